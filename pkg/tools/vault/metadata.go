package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/entrhq/vaultchat/pkg/agent/tools"
	"github.com/entrhq/vaultchat/pkg/vault"
)

// UpdateMetadataTool merges properties into a document's front matter.
type UpdateMetadataTool struct {
	ws Workspace
}

// NewUpdateMetadataTool creates an UpdateMetadataTool.
func NewUpdateMetadataTool(ws Workspace) *UpdateMetadataTool {
	return &UpdateMetadataTool{ws: ws}
}

// Name returns the tool name.
func (t *UpdateMetadataTool) Name() string {
	return "update_metadata"
}

// Description returns the tool description.
func (t *UpdateMetadataTool) Description() string {
	return "Update the YAML frontmatter / metadata of the active note. Use this if the user asks you to add tags, change status, or edit properties. Pass 'path' to update another note, such as one listed by modify_files_in_directory."
}

// Schema returns the JSON schema for the tool's input parameters.
func (t *UpdateMetadataTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"properties": map[string]interface{}{
				"type":                 "object",
				"description":          "Key-value pairs to set in the frontmatter. For tags, use an array of strings.",
				"additionalProperties": true,
			},
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Optional path of the note to update. Defaults to the active note.",
			},
		},
		[]string{"properties"},
	)
}

// Execute writes each property into the front matter, overwriting existing
// keys in place and appending new ones.
func (t *UpdateMetadataTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var input struct {
		Properties map[string]interface{} `json:"properties"`
		Path       string                 `json:"path"`
	}
	if err := tools.DecodeArguments(args, &input); err != nil {
		return "", nil, err
	}
	if len(input.Properties) == 0 {
		return "", nil, tools.NewActionError(tools.ErrInvalidArguments, "missing required parameter: properties")
	}

	target := strings.TrimSpace(input.Path)
	if target == "" {
		active, ok := t.ws.ActiveFile()
		if !ok {
			return "", nil, tools.NewActionError(nil, "No active file to update.")
		}
		target = active
	} else {
		target = NormalizeNotePath(target)
	}

	keys := make([]string, 0, len(input.Properties))
	for k := range input.Properties {
		keys = append(keys, k)
	}
	// JSON objects are unordered once decoded; sorting keeps writes deterministic.
	sort.Strings(keys)

	err := t.ws.Store().ProcessFrontMatter(ctx, target, func(fm *vault.FrontMatter) error {
		for _, k := range keys {
			if err := fm.Set(k, input.Properties[k]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", nil, tools.NewActionError(err, "Failed to update metadata: %v", err)
	}

	basename := strings.TrimSuffix(path.Base(target), path.Ext(target))
	metadata := map[string]interface{}{
		"path": target,
		"keys": keys,
	}
	return fmt.Sprintf("Successfully updated metadata for %s.", basename), metadata, nil
}
