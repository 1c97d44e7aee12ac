// Package llm defines the chat completion abstraction used by the orchestrator.
//
// Example usage:
//
//	settings := config.DefaultSettings()
//	settings.APIKey = os.Getenv("VAULTCHAT_API_KEY")
//	provider := openai.NewProvider(&settings)
//
//	completion, err := provider.Complete(ctx, []*types.Message{
//	    types.NewUserMessage("Hello!"),
//	}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(completion.Content)
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/entrhq/vaultchat/pkg/types"
)

// ErrMissingAPIKey is returned before any request is made when no key is configured.
var ErrMissingAPIKey = errors.New("API Key not set in settings.")

// APIError is returned when the endpoint answers with a non-200 status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Body)
}

// ToolDefinition describes one function the model may call.
// Parameters is a JSON schema object.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// Completion is the first choice of a chat completion response.
//
// ToolCalls are returned exactly as the endpoint sent them; some endpoints
// split one call over several entries where only the first has an ID.
type Completion struct {
	Content      string
	ToolCalls    []types.ToolCallRequest
	FinishReason string
	Usage        *types.TokenUsage
}

// HasToolCalls reports whether the model asked for tools instead of answering.
func (c *Completion) HasToolCalls() bool {
	return len(c.ToolCalls) > 0
}

// Provider sends a single non-streaming chat completion request.
//
// Implementations must not retry. Any non-200 status is returned as *APIError.
type Provider interface {
	// Complete posts messages and the tool schema and returns the first choice.
	Complete(ctx context.Context, messages []*types.Message, tools []ToolDefinition) (*Completion, error)

	// GetModel returns the model name requests are sent with.
	GetModel() string

	// GetBaseURL returns the endpoint base URL.
	GetBaseURL() string
}
