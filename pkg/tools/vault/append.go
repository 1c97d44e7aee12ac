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

// AppendToNoteTool adds text to the end of an existing document.
type AppendToNoteTool struct {
	ws Workspace
}

// NewAppendToNoteTool creates an AppendToNoteTool.
func NewAppendToNoteTool(ws Workspace) *AppendToNoteTool {
	return &AppendToNoteTool{ws: ws}
}

// Name returns the tool name.
func (t *AppendToNoteTool) Name() string {
	return "append_to_note"
}

// Description returns the tool description.
func (t *AppendToNoteTool) Description() string {
	return "Append new content to the end of an existing note."
}

// Schema returns the JSON schema for the tool's input parameters.
func (t *AppendToNoteTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "The path of the existing note, e.g. 'Ideas/Project.md'.",
			},
			"content": map[string]interface{}{
				"type":        "string",
				"description": "The content to append to the end of the note.",
			},
		},
		[]string{"path", "content"},
	)
}

// Execute appends a newline and the content.
func (t *AppendToNoteTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
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
	store := t.ws.Store()

	entry, err := store.Stat(ctx, p)
	if err != nil || !entry.IsMarkdown() {
		if err == nil || errors.Is(err, vault.ErrNotFound) || errors.Is(err, vault.ErrOutsideVault) {
			return "", nil, tools.NewActionError(vault.ErrNotFound, "Markdown file not found at path %s", p)
		}
		return "", nil, tools.NewActionError(err, "Failed to append to note: %v", err)
	}

	if err := store.Append(ctx, p, "\n"+input.Content); err != nil {
		return "", nil, tools.NewActionError(err, "Failed to append to note: %v", err)
	}

	metadata := map[string]interface{}{
		"path":  p,
		"bytes": len(input.Content) + 1,
	}
	return fmt.Sprintf("Successfully appended content to %s", p), metadata, nil
}
