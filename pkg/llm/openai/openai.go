// Package openai provides a non-streaming provider for OpenAI-compatible
// chat completion endpoints such as DeepSeek.
//
// Example usage:
//
//	settings := config.DefaultSettings()
//	settings.APIKey = "sk-..."
//
//	provider := openai.NewProvider(&settings)
//	completion, err := provider.Complete(ctx, messages, tools)
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/entrhq/vaultchat/pkg/config"
	"github.com/entrhq/vaultchat/pkg/llm"
	"github.com/entrhq/vaultchat/pkg/logging"
	"github.com/entrhq/vaultchat/pkg/types"
	"github.com/openai/openai-go"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("llm")
	if err != nil {
		debugLog.Warnf("llm logging fell back to stderr: %v", err)
	}
}

// Provider implements llm.Provider over plain HTTP.
//
// Settings are read on every call, so a key entered after startup is picked
// up by the next request.
type Provider struct {
	httpClient *http.Client
	settings   *config.Settings
}

// ProviderOption is a function that configures a Provider.
type ProviderOption func(*Provider)

// WithHTTPClient replaces the default client, whose timeout comes from
// settings.RequestTimeout.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(p *Provider) {
		p.httpClient = client
	}
}

// NewProvider creates a provider bound to settings.
func NewProvider(settings *config.Settings, opts ...ProviderOption) *Provider {
	p := &Provider{
		settings:   settings,
		httpClient: &http.Client{Timeout: settings.RequestTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Complete sends one chat completion request with stream disabled.
func (p *Provider) Complete(ctx context.Context, messages []*types.Message, tools []llm.ToolDefinition) (*llm.Completion, error) {
	if p.settings.APIKey == "" {
		return nil, llm.ErrMissingAPIKey
	}

	resp, err := p.sendRequest(ctx, messages, tools)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		debugLog.Errorf("chat completion failed: status=%d body=%s", resp.StatusCode, string(body))
		return nil, &llm.APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var completion openai.ChatCompletion
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return convertCompletion(&completion)
}

// sendRequest builds and posts the request body.
func (p *Provider) sendRequest(ctx context.Context, messages []*types.Message, tools []llm.ToolDefinition) (*http.Response, error) {
	reqBody := map[string]interface{}{
		"model":    p.settings.Model,
		"messages": convertToOpenAIMessages(messages),
		"stream":   false,
	}
	if len(tools) > 0 {
		reqBody["tools"] = convertToOpenAITools(tools)
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := p.settings.CompletionsURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.settings.APIKey)

	debugLog.Debugf("POST %s model=%s messages=%d tools=%d", url, p.settings.Model, len(messages), len(tools))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// GetModel returns the model name being used.
func (p *Provider) GetModel() string {
	return p.settings.Model
}

// GetBaseURL returns the base URL being used.
func (p *Provider) GetBaseURL() string {
	return p.settings.APIURL
}

func convertCompletion(completion *openai.ChatCompletion) (*llm.Completion, error) {
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("response contained no choices")
	}

	choice := completion.Choices[0]
	result := &llm.Completion{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
	}

	for _, tc := range choice.Message.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, types.ToolCallRequest{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	if completion.Usage.TotalTokens > 0 {
		result.Usage = &types.TokenUsage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		}
	}

	return result, nil
}

// convertToOpenAIMessages converts our Message format to OpenAI's ChatCompletionMessageParamUnion format.
func convertToOpenAIMessages(messages []*types.Message) []openai.ChatCompletionMessageParamUnion {
	openaiMessages := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case types.RoleSystem:
			openaiMessages = append(openaiMessages, openai.SystemMessage(msg.Content))
		case types.RoleUser:
			openaiMessages = append(openaiMessages, openai.UserMessage(msg.Content))
		case types.RoleAssistant:
			if msg.IsToolCallRequest() {
				openaiMessages = append(openaiMessages, toolCallMessage(msg))
			} else {
				openaiMessages = append(openaiMessages, openai.AssistantMessage(msg.Content))
			}
		case types.RoleTool:
			openaiMessages = append(openaiMessages, openai.ToolMessage(msg.Content, msg.ToolCallID))
		default:
			openaiMessages = append(openaiMessages, openai.UserMessage(msg.Content))
		}
	}

	return openaiMessages
}

func toolCallMessage(msg *types.Message) openai.ChatCompletionMessageParamUnion {
	calls := make([]openai.ChatCompletionMessageToolCallParam, 0, len(msg.ToolCalls))
	for _, call := range msg.ToolCalls {
		calls = append(calls, openai.ChatCompletionMessageToolCallParam{
			ID: call.ID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      call.Name,
				Arguments: call.Arguments,
			},
		})
	}

	assistant := &openai.ChatCompletionAssistantMessageParam{ToolCalls: calls}
	if msg.Content != "" {
		assistant.Content.OfString = openai.String(msg.Content)
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: assistant}
}

func convertToOpenAITools(tools []llm.ToolDefinition) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, tool := range tools {
		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        tool.Name,
				Description: openai.String(tool.Description),
				Parameters:  openai.FunctionParameters(tool.Parameters),
			},
		})
	}
	return out
}
