package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/entrhq/vaultchat/pkg/agent/tools"
	"github.com/entrhq/vaultchat/pkg/types"
)

// dispatch runs one tool call and always returns text for the model.
// Failures are reported to the model and never end the turn.
func (o *Orchestrator) dispatch(ctx context.Context, round int, call types.ToolCallRequest) string {
	o.emit(types.NewToolCallEvent(round, call.Name, argumentsMap(call.Arguments)))

	tool, ok := o.registry.Get(call.Name)
	if !ok {
		err := fmt.Errorf("Unknown tool %s", call.Name)
		o.emit(types.NewToolResultErrorEvent(round, call.Name, err))
		return "Error: " + err.Error()
	}

	result, metadata, err := tool.Execute(ctx, json.RawMessage(call.Arguments))
	if err != nil {
		o.emit(types.NewToolResultErrorEvent(round, call.Name, err))
		agentDebugLog.Warnf("tool %s failed: %v", call.Name, err)
		return toolErrorText(err)
	}

	event := types.NewToolResultEvent(round, call.Name, result)
	if len(metadata) > 0 {
		maps.Copy(event.Metadata, metadata)
	}
	o.emit(event)
	return result
}

// toolErrorText formats a tool failure for the model. Expected failures
// read "Error: ..."; anything else is reported as an execution error.
func toolErrorText(err error) string {
	var actionErr *tools.ActionError
	if errors.As(err, &actionErr) {
		return "Error: " + actionErr.Message
	}
	return "Error executing tool: " + err.Error()
}

// argumentsMap decodes arguments for display. Invalid JSON yields an empty map.
func argumentsMap(arguments string) map[string]interface{} {
	m := make(map[string]interface{})
	if arguments == "" {
		return m
	}
	if err := json.Unmarshal([]byte(arguments), &m); err != nil {
		return make(map[string]interface{})
	}
	return m
}
