package tui

import (
	"fmt"

	"github.com/entrhq/vaultchat/pkg/agent"
	"github.com/entrhq/vaultchat/pkg/types"
)

// handleAgentEvent appends session activity to the content buffer.
func (m *model) handleAgentEvent(event *types.AgentEvent) {
	switch event.Type {
	case types.EventTypeMessage:
		m.handleMessage(event)

	case types.EventTypeThinkingContent:
		m.content.WriteString(thinkingStyle.Render(event.Content) + "\n\n")

	case types.EventTypeToolCall:
		if m.showTools {
			m.content.WriteString(toolStyle.Render("=> Used tool: "+event.ToolName) + "\n")
		}

	case types.EventTypeToolResult:
		if m.showTools {
			m.content.WriteString(toolResultStyle.Render("=> Result: "+truncateLine(event.ToolOutput, 50)) + "\n\n")
		}

	case types.EventTypeToolResultError:
		if m.showTools {
			m.content.WriteString(errorStyle.Render(fmt.Sprintf("=> Tool error: %v", event.Error)) + "\n\n")
		}

	case types.EventTypeAPICallStart:
		if n, ok := event.Metadata["prompt_tokens"].(int); ok {
			m.lastPromptEstimate = n
		}

	case types.EventTypeTokenUsage:
		if u := event.TokenUsage; u != nil {
			m.totalPromptTokens += u.PromptTokens
			m.totalCompletionTokens += u.CompletionTokens
			m.totalTokens += u.TotalTokens
		}

	case types.EventTypeError:
		m.content.WriteString(errorStyle.Render(agent.SenderLabel(types.RoleSystem)) + "\n")
		m.content.WriteString("Error: " + event.Error.Error() + "\n\n")

	case types.EventTypeUpdateBusy:
		m.busy = event.IsBusy
	}
}

func (m *model) handleMessage(event *types.AgentEvent) {
	switch event.Role {
	case types.RoleUser:
		m.content.WriteString(userStyle.Render(agent.SenderLabel(event.Role)) + "\n")
		m.content.WriteString(event.Content + "\n\n")
	case types.RoleAssistant:
		m.content.WriteString(assistantStyle.Render(agent.SenderLabel(event.Role)) + "\n")
		m.content.WriteString(m.host.RenderMarkdown(event.Content) + "\n")
	}
}
