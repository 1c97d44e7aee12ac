// Package agent runs the chat turn: it sends the conversation to the model,
// executes the vault actions the model asks for and feeds their results back
// until the model answers in plain text.
//
// The Session is the panel a host mounts. It owns the conversation history
// and the cached editor selection, and drives one Orchestrator run per turn:
//
//	h := host.NewLocal(store, renderer)
//	session := agent.NewSession(provider, &settings)
//	_ = h.RegisterView(session)
//	_, _ = h.Mount(session.ID())
//	err := session.Send(ctx, "What did I write about gardening?")
package agent

import (
	"errors"

	"github.com/entrhq/vaultchat/pkg/llm"
)

var (
	// ErrMissingAPIKey is returned before any request when no key is configured.
	ErrMissingAPIKey = llm.ErrMissingAPIKey

	// ErrTooManyRounds ends a turn whose model keeps asking for tools.
	ErrTooManyRounds = errors.New("too many tool rounds without a final answer")

	// ErrTurnInProgress rejects a send while another turn is running.
	ErrTurnInProgress = errors.New("a turn is already in progress")

	// ErrNotMounted is returned by Send before the session is mounted.
	ErrNotMounted = errors.New("session is not mounted")
)

// State is the orchestrator's position in a turn.
type State int32

const (
	StateIdle State = iota
	StateSending
	StateAwaitingResponse
	StateToolRequested
	StateExecutingTool
	StateFinalAnswer
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateToolRequested:
		return "tool_requested"
	case StateExecutingTool:
		return "executing_tool"
	case StateFinalAnswer:
		return "final_answer"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Busy reports whether a turn is mid-flight in this state.
func (s State) Busy() bool {
	switch s {
	case StateSending, StateAwaitingResponse, StateToolRequested, StateExecutingTool:
		return true
	}
	return false
}
