package types

import "fmt"

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"      // RoleUser is a message typed by the user.
	RoleAssistant MessageRole = "assistant" // RoleAssistant is a message produced by the model.
	RoleSystem    MessageRole = "system"    // RoleSystem is an instruction or inline status entry.
	RoleTool      MessageRole = "tool"      // RoleTool carries the result of an executed tool call.
)

// ToolCallRequest is a single tool invocation requested by the model.
// The ID is opaque and assigned by the model provider; Arguments is the raw
// JSON-encoded argument object exactly as the provider returned it.
type ToolCallRequest struct {
	ID        string
	Name      string
	Arguments string
}

// Message is one entry of a conversation.
//
// An assistant message that carries ToolCalls is a decision to call tools
// rather than an answer. User and system messages always have Content; an
// assistant answer may be empty when the model said nothing. Messages are
// treated as immutable once constructed.
type Message struct {
	Role       MessageRole
	Content    string
	ToolCalls  []ToolCallRequest
	ToolCallID string // set on RoleTool messages
	Name       string // tool name on RoleTool messages
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) *Message {
	return &Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant answer message.
func NewAssistantMessage(content string) *Message {
	return &Message{Role: RoleAssistant, Content: content}
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) *Message {
	return &Message{Role: RoleSystem, Content: content}
}

// NewToolCallMessage creates the assistant decision message that requests
// the given tool calls. The slice is copied.
func NewToolCallMessage(calls []ToolCallRequest) *Message {
	cp := make([]ToolCallRequest, len(calls))
	copy(cp, calls)
	return &Message{Role: RoleAssistant, ToolCalls: cp}
}

// NewToolResultMessage creates the message that feeds a tool result back to the model.
func NewToolResultMessage(call ToolCallRequest, result string) *Message {
	return &Message{
		Role:       RoleTool,
		Content:    result,
		ToolCallID: call.ID,
		Name:       call.Name,
	}
}

// IsToolCallRequest reports whether the message is an assistant decision to call tools.
func (m *Message) IsToolCallRequest() bool {
	return m.Role == RoleAssistant && len(m.ToolCalls) > 0
}

// Validate checks the structural invariants of the message.
func (m *Message) Validate() error {
	switch m.Role {
	case RoleUser, RoleAssistant, RoleSystem, RoleTool:
	default:
		return fmt.Errorf("unknown message role %q", m.Role)
	}
	if len(m.ToolCalls) > 0 && m.Role != RoleAssistant {
		return fmt.Errorf("%s message cannot carry tool calls", m.Role)
	}
	if m.Content == "" && (m.Role == RoleUser || m.Role == RoleSystem) {
		return fmt.Errorf("%s message has no content", m.Role)
	}
	if m.Role == RoleTool && m.ToolCallID == "" {
		return fmt.Errorf("tool message is missing tool_call_id")
	}
	return nil
}
