package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/entrhq/vaultchat/pkg/agent/tools"
	"github.com/entrhq/vaultchat/pkg/vault"
)

// CreateNoteTool writes a new document.
type CreateNoteTool struct {
	ws Workspace
}

// NewCreateNoteTool creates a CreateNoteTool.
func NewCreateNoteTool(ws Workspace) *CreateNoteTool {
	return &CreateNoteTool{ws: ws}
}

// Name returns the tool name.
func (t *CreateNoteTool) Name() string {
	return "create_note"
}

// Description returns the tool description.
func (t *CreateNoteTool) Description() string {
	return "Create a new markdown note in the vault at the specified path."
}

// Schema returns the JSON schema for the tool's input parameters.
func (t *CreateNoteTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "The path including filename where the note should be created, e.g. 'Daily/2026-01-01.md'.",
			},
			"content": map[string]interface{}{
				"type":        "string",
				"description": "The initial markdown content of the new note.",
			},
		},
		[]string{"path", "content"},
	)
}

// Execute creates the note, refusing to touch anything already at the path.
func (t *CreateNoteTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var input struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if err := tools.DecodeArguments(args, &input); err != nil {
		return "", nil, err
	}
	if strings.TrimSpace(input.Path) == "" {
		return "", nil, fmt.Errorf("%w: missing required parameter: path", tools.ErrInvalidArguments)
	}

	p := NormalizeNotePath(input.Path)
	err := t.ws.Store().Create(ctx, p, input.Content)
	switch {
	case errors.Is(err, vault.ErrAlreadyExists):
		return "", nil, tools.NewActionError(err, "File already exists at path %s", p)
	case errors.Is(err, vault.ErrOutsideVault):
		return "", nil, tools.NewActionError(err, "Path %s is outside the vault", input.Path)
	case err != nil:
		return "", nil, tools.NewActionError(err, "Failed to create note: %v", err)
	}

	metadata := map[string]interface{}{
		"path":  p,
		"bytes": len(input.Content),
	}
	return fmt.Sprintf("Successfully created new note at %s", p), metadata, nil
}
