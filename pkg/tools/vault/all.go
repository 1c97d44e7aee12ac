package vault

import "github.com/entrhq/vaultchat/pkg/agent/tools"

// All returns the five vault actions in the order they are offered to the model.
func All(ws Workspace) []tools.Tool {
	return []tools.Tool{
		NewSearchVaultTool(ws),
		NewUpdateMetadataTool(ws),
		NewCreateNoteTool(ws),
		NewAppendToNoteTool(ws),
		NewModifyDirectoryTool(ws),
	}
}
