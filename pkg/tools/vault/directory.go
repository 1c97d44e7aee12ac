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

// ModifyDirectoryTool lists the documents under a folder so the model can
// edit them one by one. It never changes a file itself.
type ModifyDirectoryTool struct {
	ws Workspace
}

// NewModifyDirectoryTool creates a ModifyDirectoryTool.
func NewModifyDirectoryTool(ws Workspace) *ModifyDirectoryTool {
	return &ModifyDirectoryTool{ws: ws}
}

// Name returns the tool name.
func (t *ModifyDirectoryTool) Name() string {
	return "modify_files_in_directory"
}

// Description returns the tool description.
func (t *ModifyDirectoryTool) Description() string {
	return "Get a list of all markdown files in a directory to perform bulk operations."
}

// Schema returns the JSON schema for the tool's input parameters.
func (t *ModifyDirectoryTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"directory_path": map[string]interface{}{
				"type":        "string",
				"description": "The path of the directory to scan, e.g. 'Work/Projects'. Use '/' for the root vault.",
			},
			"instruction": map[string]interface{}{
				"type":        "string",
				"description": "A description of what needs to be changed across these files.",
			},
		},
		[]string{"directory_path", "instruction"},
	)
}

// Execute lists markdown documents under the folder, recursively.
func (t *ModifyDirectoryTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var input struct {
		DirectoryPath string `json:"directory_path"`
		Instruction   string `json:"instruction"`
	}
	if err := tools.DecodeArguments(args, &input); err != nil {
		return "", nil, err
	}

	dir := NormalizeDirPath(input.DirectoryPath)
	store := t.ws.Store()

	entry, err := store.Stat(ctx, dir)
	if err != nil || !entry.IsDir {
		if err == nil || errors.Is(err, vault.ErrNotFound) || errors.Is(err, vault.ErrOutsideVault) {
			return "", nil, tools.NewActionError(vault.ErrNotDirectory, "Directory not found at path %s", displayDir(dir))
		}
		return "", nil, tools.NewActionError(err, "Failed to process directory: %v", err)
	}

	docs, err := store.WalkMarkdown(ctx, dir)
	if err != nil {
		return "", nil, tools.NewActionError(err, "Failed to process directory: %v", err)
	}
	if len(docs) == 0 {
		return fmt.Sprintf("No markdown files found in directory %s", displayDir(dir)), map[string]interface{}{"files": 0}, nil
	}

	paths := make([]string, len(docs))
	for i, d := range docs {
		paths[i] = d.Path
	}

	metadata := map[string]interface{}{
		"directory": displayDir(dir),
		"files":     len(paths),
	}
	return fmt.Sprintf(
		"Found %d files in directory %s. The files are: %s. \nTo apply the instruction %q, please call 'update_metadata' or 'append_to_note' on these files one by one.",
		len(paths), displayDir(dir), strings.Join(paths, ", "), input.Instruction,
	), metadata, nil
}
