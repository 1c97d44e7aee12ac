package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/vaultchat/pkg/agent/memory"
	"github.com/entrhq/vaultchat/pkg/agent/tools"
	"github.com/entrhq/vaultchat/pkg/llm"
	vaulttools "github.com/entrhq/vaultchat/pkg/tools/vault"
	"github.com/entrhq/vaultchat/pkg/types"
	"github.com/entrhq/vaultchat/pkg/vault"
)

type staticWorkspace struct {
	store  vault.Store
	active string
}

func (w staticWorkspace) Store() vault.Store         { return w.store }
func (w staticWorkspace) ActiveFile() (string, bool) { return w.active, w.active != "" }

// countingTool records its calls and echoes the arguments.
type countingTool struct {
	name  string
	calls []string
}

func (c *countingTool) Name() string                   { return c.name }
func (c *countingTool) Description() string            { return "counts calls" }
func (c *countingTool) Schema() map[string]interface{} { return tools.BaseToolSchema(nil, nil) }

func (c *countingTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	c.calls = append(c.calls, string(args))
	return c.name + " got " + string(args), map[string]interface{}{"n": len(c.calls)}, nil
}

func newVaultRegistry(t *testing.T, store vault.Store) *tools.Registry {
	t.Helper()
	registry, err := tools.NewRegistry(vaulttools.All(staticWorkspace{store: store})...)
	require.NoError(t, err)
	return registry
}

func TestOrchestrator_PlainAnswer(t *testing.T) {
	provider := &scriptedProvider{completions: []*llm.Completion{answer("<think>hmm</think>\nThe answer.")}}
	history := memory.NewConversationHistory()
	events := &eventLog{}
	registry := newVaultRegistry(t, newTestStore(t, nil))

	o := NewOrchestrator(provider, registry, testSettings(), WithHistory(history), WithEmitter(events.record))
	res, err := o.Run(context.Background(), []*types.Message{types.NewUserMessage("hi")}, "hi")
	require.NoError(t, err)

	assert.Equal(t, "The answer.", res.Answer)
	assert.Equal(t, "hmm", res.Thinking)
	assert.Equal(t, 0, res.Rounds)
	assert.Equal(t, StateFinalAnswer, o.State())

	require.Len(t, provider.tools, 1)
	require.Len(t, provider.tools[0], 5, "all five vault actions are offered")

	require.Len(t, events.ofType(types.EventTypeThinkingContent), 1)
	msgs := events.ofType(types.EventTypeMessage)
	require.Len(t, msgs, 1)
	assert.Equal(t, "The answer.", msgs[0].Content)
	assert.Len(t, events.ofType(types.EventTypeAPICallStart), 1)
}

func TestOrchestrator_MissingAPIKey(t *testing.T) {
	provider := &scriptedProvider{completions: []*llm.Completion{answer("never")}}
	settings := testSettings()
	settings.APIKey = ""
	history := memory.NewConversationHistory()

	o := NewOrchestrator(provider, newVaultRegistry(t, newTestStore(t, nil)), settings, WithHistory(history))
	_, err := o.Run(context.Background(), []*types.Message{types.NewUserMessage("hi")}, "hi")

	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Equal(t, 0, provider.requestCount())
	assert.Equal(t, 0, history.Len())
	assert.Equal(t, StateFailed, o.State())
}

func TestOrchestrator_ProviderErrorLeavesHistory(t *testing.T) {
	provider := &scriptedProvider{err: &llm.APIError{StatusCode: 401, Body: "bad key"}}
	history := memory.NewConversationHistory()
	history.Add(types.NewAssistantMessage(Greeting))

	o := NewOrchestrator(provider, newVaultRegistry(t, newTestStore(t, nil)), testSettings(), WithHistory(history))
	_, err := o.Run(context.Background(), []*types.Message{types.NewUserMessage("hi")}, "hi")

	var apiErr *llm.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 401, apiErr.StatusCode)
	assert.Equal(t, 1, history.Len())
}

func TestOrchestrator_RoundCap(t *testing.T) {
	call := types.ToolCallRequest{ID: "c1", Name: "loop", Arguments: `{}`}
	provider := &scriptedProvider{completions: []*llm.Completion{toolCalls(call)}}
	loop := &countingTool{name: "loop"}
	registry, err := tools.NewRegistry(loop)
	require.NoError(t, err)

	o := NewOrchestrator(provider, registry, testSettings(), WithMaxRounds(2))
	_, err = o.Run(context.Background(), []*types.Message{types.NewUserMessage("go")}, "go")

	assert.ErrorIs(t, err, ErrTooManyRounds)
	assert.Equal(t, 3, provider.requestCount(), "two tool rounds then the refused third")
	assert.Len(t, loop.calls, 2)
}

func TestOrchestrator_MultipleCallsInOrder(t *testing.T) {
	first := &countingTool{name: "first"}
	second := &countingTool{name: "second"}
	registry, err := tools.NewRegistry(first, second)
	require.NoError(t, err)

	provider := &scriptedProvider{completions: []*llm.Completion{
		toolCalls(
			types.ToolCallRequest{ID: "a", Name: "first", Arguments: `{"x":`},
			types.ToolCallRequest{Arguments: `1}`},
			types.ToolCallRequest{ID: "b", Name: "second", Arguments: `{}`},
		),
		answer("done"),
	}}

	t.Run("all calls", func(t *testing.T) {
		o := NewOrchestrator(provider, registry, testSettings())
		res, err := o.Run(context.Background(), []*types.Message{types.NewUserMessage("go")}, "go")
		require.NoError(t, err)
		assert.Equal(t, 1, res.Rounds)
		assert.Equal(t, 2, res.ToolCalls)
		assert.Equal(t, []string{`{"x":1}`}, first.calls)
		assert.Len(t, second.calls, 1)

		sent := provider.lastRequest()
		require.Len(t, sent, 4)
		assert.True(t, sent[1].IsToolCallRequest())
		require.Len(t, sent[1].ToolCalls, 2)
		assert.Equal(t, "a", sent[2].ToolCallID)
		assert.Equal(t, `first got {"x":1}`, sent[2].Content)
		assert.Equal(t, "b", sent[3].ToolCallID)
	})

	t.Run("single tool per round", func(t *testing.T) {
		provider.requests = nil
		first.calls, second.calls = nil, nil

		o := NewOrchestrator(provider, registry, testSettings(), WithSingleToolPerRound())
		res, err := o.Run(context.Background(), []*types.Message{types.NewUserMessage("go")}, "go")
		require.NoError(t, err)
		assert.Equal(t, 1, res.ToolCalls)
		assert.Len(t, first.calls, 1)
		assert.Empty(t, second.calls)
		assert.Len(t, provider.lastRequest(), 3)
	})
}

func TestOrchestrator_ToolFailuresBecomeText(t *testing.T) {
	store := newTestStore(t, map[string]string{"a.md": "x"})
	provider := &scriptedProvider{completions: []*llm.Completion{
		toolCalls(
			types.ToolCallRequest{ID: "1", Name: "delete_vault", Arguments: `{}`},
			types.ToolCallRequest{ID: "2", Name: "search_vault", Arguments: `{"query":`},
			types.ToolCallRequest{ID: "3", Name: "create_note", Arguments: `{"path":"a","content":"y"}`},
		),
		answer("sorry"),
	}}
	events := &eventLog{}

	o := NewOrchestrator(provider, newVaultRegistry(t, store), testSettings(), WithEmitter(events.record))
	_, err := o.Run(context.Background(), []*types.Message{types.NewUserMessage("go")}, "go")
	require.NoError(t, err)

	sent := provider.lastRequest()
	require.Len(t, sent, 5)
	assert.Equal(t, "Error: Unknown tool delete_vault", sent[2].Content)
	assert.True(t, strings.HasPrefix(sent[3].Content, "Error executing tool: "), sent[3].Content)
	assert.Equal(t, "Error: File already exists at path a.md", sent[4].Content)
	assert.Len(t, events.ofType(types.EventTypeToolResultError), 3)
}

func TestOrchestrator_EmptyAnswer(t *testing.T) {
	provider := &scriptedProvider{completions: []*llm.Completion{answer("<think>only thoughts</think>")}}
	history := memory.NewConversationHistory()
	events := &eventLog{}
	o := NewOrchestrator(provider, newVaultRegistry(t, newTestStore(t, nil)), testSettings(),
		WithHistory(history), WithEmitter(events.record))

	res, err := o.Run(context.Background(), []*types.Message{types.NewUserMessage("go")}, "go")
	require.NoError(t, err)
	assert.Equal(t, "", res.Answer)
	assert.Equal(t, "only thoughts", res.Thinking)
	assert.Equal(t, StateFinalAnswer, o.State())

	messages := events.ofType(types.EventTypeMessage)
	require.Len(t, messages, 1)
	assert.Equal(t, types.RoleAssistant, messages[0].Role)
	assert.Equal(t, "", messages[0].Content)

	require.Equal(t, 2, history.Len())
	assert.Equal(t, types.RoleAssistant, history.Last().Role)
	assert.Equal(t, "", history.Last().Content)
}

func TestMergeToolCalls(t *testing.T) {
	merged := mergeToolCalls([]types.ToolCallRequest{
		{ID: "a", Name: "search_vault", Arguments: `{"qu`},
		{Arguments: `ery":"x"}`},
		{ID: "a", Arguments: ``},
		{ID: "b", Name: "create_note", Arguments: `{}`},
	})
	require.Len(t, merged, 2)
	assert.Equal(t, types.ToolCallRequest{ID: "a", Name: "search_vault", Arguments: `{"query":"x"}`}, merged[0])
	assert.Equal(t, "b", merged[1].ID)

	generated := mergeToolCalls([]types.ToolCallRequest{{Name: "search_vault", Arguments: `{}`}})
	require.Len(t, generated, 1)
	assert.True(t, strings.HasPrefix(generated[0].ID, "call_"))
}

func TestToolErrorText(t *testing.T) {
	assert.Equal(t, "Error: No active file to update.", toolErrorText(tools.NewActionError(nil, "No active file to update.")))
	assert.Equal(t, "Error executing tool: boom", toolErrorText(errors.New("boom")))
}

func TestState(t *testing.T) {
	assert.Equal(t, "awaiting_response", StateAwaitingResponse.String())
	assert.True(t, StateExecutingTool.Busy())
	assert.False(t, StateFinalAnswer.Busy())
}
