package types

// AgentEventType defines the type of event emitted while a turn is processed.
type AgentEventType string

const (
	EventTypeMessage         AgentEventType = "message"           // EventTypeMessage is a panel entry (user, assistant, system) to render.
	EventTypeThinkingContent AgentEventType = "thinking_content"  // EventTypeThinkingContent carries reasoning split off a final answer.
	EventTypeToolCall        AgentEventType = "tool_call"         // EventTypeToolCall indicates a tool is about to run.
	EventTypeToolResult      AgentEventType = "tool_result"       // EventTypeToolResult carries the text result of a tool.
	EventTypeToolResultError AgentEventType = "tool_result_error" // EventTypeToolResultError indicates a tool failed; the failure text still goes to the model.
	EventTypeAPICallStart    AgentEventType = "api_call_start"    // EventTypeAPICallStart indicates a request to the model endpoint was sent.
	EventTypeAPICallEnd      AgentEventType = "api_call_end"      // EventTypeAPICallEnd indicates the model endpoint answered.
	EventTypeUpdateBusy      AgentEventType = "update_busy"       // EventTypeUpdateBusy indicates a change in the session's busy status.
	EventTypeTurnEnd         AgentEventType = "turn_end"          // EventTypeTurnEnd indicates the current turn finished, successfully or not.
	EventTypeError           AgentEventType = "error"             // EventTypeError indicates a fatal error for the current turn.
	EventTypeNotice          AgentEventType = "notice"            // EventTypeNotice is a transient user-visible notice.
	EventTypeTokenUsage      AgentEventType = "token_usage"       // EventTypeTokenUsage carries token accounting for one request.
)

// AgentEvent represents an event emitted by the session or orchestrator.
type AgentEvent struct {
	// Metadata holds optional additional information about the event.
	Metadata map[string]interface{}

	// ToolInput is the decoded input of a tool call (for tool call events).
	ToolInput map[string]interface{}

	// ToolOutput is the result text of a tool (for tool result events).
	ToolOutput string

	// Error contains error information for error events.
	Error error

	// Content holds text content for message, thinking and notice events.
	Content string

	// Role is the author of a message event.
	Role MessageRole

	// ToolName is the name of the tool being called (for tool events).
	ToolName string

	// Type indicates the kind of event.
	Type AgentEventType

	// IsBusy indicates if the session is busy (for busy status events).
	IsBusy bool

	// Round is the 1-based tool round the event belongs to, when relevant.
	Round int

	// TokenUsage contains token usage information (for token usage events).
	TokenUsage *TokenUsage
}

// TokenUsage contains token usage statistics from an LLM API call.
type TokenUsage struct {
	// PromptTokens is the number of tokens in the input/prompt.
	PromptTokens int

	// CompletionTokens is the number of tokens in the generated completion/response.
	CompletionTokens int

	// TotalTokens is the total number of tokens used (prompt + completion).
	TotalTokens int
}

// NewMessageEvent creates a message event for the given role.
func NewMessageEvent(role MessageRole, content string) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeMessage,
		Role:     role,
		Content:  content,
		Metadata: make(map[string]interface{}),
	}
}

// NewThinkingContentEvent creates a thinking content event.
func NewThinkingContentEvent(content string) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeThinkingContent,
		Content:  content,
		Metadata: make(map[string]interface{}),
	}
}

// NewToolCallEvent creates a tool call event.
func NewToolCallEvent(round int, toolName string, toolInput map[string]interface{}) *AgentEvent {
	return &AgentEvent{
		Type:      EventTypeToolCall,
		Round:     round,
		ToolName:  toolName,
		ToolInput: toolInput,
		Metadata:  make(map[string]interface{}),
	}
}

// NewToolResultEvent creates a tool result event.
func NewToolResultEvent(round int, toolName, output string) *AgentEvent {
	return &AgentEvent{
		Type:       EventTypeToolResult,
		Round:      round,
		ToolName:   toolName,
		ToolOutput: output,
		Metadata:   make(map[string]interface{}),
	}
}

// NewToolResultErrorEvent creates a tool result error event.
func NewToolResultErrorEvent(round int, toolName string, err error) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeToolResultError,
		Round:    round,
		ToolName: toolName,
		Error:    err,
		Metadata: make(map[string]interface{}),
	}
}

// NewAPICallStartEvent creates an API call start event with the prompt token count.
func NewAPICallStartEvent(round, promptTokens int) *AgentEvent {
	return &AgentEvent{
		Type:  EventTypeAPICallStart,
		Round: round,
		Metadata: map[string]interface{}{
			"prompt_tokens": promptTokens,
		},
	}
}

// NewAPICallEndEvent creates an API call end event.
func NewAPICallEndEvent(round int) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeAPICallEnd,
		Round:    round,
		Metadata: make(map[string]interface{}),
	}
}

// NewUpdateBusyEvent creates a busy status update event.
func NewUpdateBusyEvent(isBusy bool) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeUpdateBusy,
		IsBusy:   isBusy,
		Metadata: make(map[string]interface{}),
	}
}

// NewTurnEndEvent creates a turn end event.
func NewTurnEndEvent() *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeTurnEnd,
		Metadata: make(map[string]interface{}),
	}
}

// NewErrorEvent creates an error event.
func NewErrorEvent(err error) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeError,
		Error:    err,
		Metadata: make(map[string]interface{}),
	}
}

// NewNoticeEvent creates a notice event.
func NewNoticeEvent(message string) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeNotice,
		Content:  message,
		Metadata: make(map[string]interface{}),
	}
}

// NewTokenUsageEvent creates a token usage event.
func NewTokenUsageEvent(promptTokens, completionTokens, totalTokens int) *AgentEvent {
	return &AgentEvent{
		Type: EventTypeTokenUsage,
		TokenUsage: &TokenUsage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      totalTokens,
		},
		Metadata: make(map[string]interface{}),
	}
}

// IsTerminal reports whether the event ends a turn.
func (e *AgentEvent) IsTerminal() bool {
	return e.Type == EventTypeTurnEnd
}
