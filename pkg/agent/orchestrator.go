package agent

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	agentcontext "github.com/entrhq/vaultchat/pkg/agent/context"
	"github.com/entrhq/vaultchat/pkg/agent/memory"
	"github.com/entrhq/vaultchat/pkg/agent/tools"
	"github.com/entrhq/vaultchat/pkg/config"
	"github.com/entrhq/vaultchat/pkg/llm"
	"github.com/entrhq/vaultchat/pkg/llm/parser"
	"github.com/entrhq/vaultchat/pkg/llm/tokenizer"
	"github.com/entrhq/vaultchat/pkg/logging"
	"github.com/entrhq/vaultchat/pkg/types"
)

var agentDebugLog *logging.Logger

func init() {
	var err error
	agentDebugLog, err = logging.NewLogger("agent")
	if err != nil {
		// Logger fell back to stderr due to initialization failure
		agentDebugLog.Warnf("Failed to initialize agent logger, using stderr fallback: %v", err)
	}
}

// Orchestrator runs the tool-call loop for one turn at a time.
type Orchestrator struct {
	provider   llm.Provider
	registry   *tools.Registry
	settings   *config.Settings
	history    *memory.ConversationHistory
	tokenizer  *tokenizer.Tokenizer
	emit       func(*types.AgentEvent)
	maxRounds  int // 0 means settings.MaxToolRounds
	singleTool bool

	state atomic.Int32
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxRounds caps tool rounds per turn, overriding the settings.
func WithMaxRounds(n int) Option {
	return func(o *Orchestrator) {
		o.maxRounds = n
	}
}

// WithSingleToolPerRound executes only the first tool call of a response.
func WithSingleToolPerRound() Option {
	return func(o *Orchestrator) {
		o.singleTool = true
	}
}

// WithEmitter receives every event of a turn.
func WithEmitter(fn func(*types.AgentEvent)) Option {
	return func(o *Orchestrator) {
		o.emit = fn
	}
}

// WithHistory records finished turns in h.
func WithHistory(h *memory.ConversationHistory) Option {
	return func(o *Orchestrator) {
		o.history = h
	}
}

// WithTokenizer replaces the prompt token counter.
func WithTokenizer(t *tokenizer.Tokenizer) Option {
	return func(o *Orchestrator) {
		o.tokenizer = t
	}
}

// NewOrchestrator creates an orchestrator. settings is read at the start of
// every turn.
func NewOrchestrator(provider llm.Provider, registry *tools.Registry, settings *config.Settings, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider: provider,
		registry: registry,
		settings: settings,
		emit:     func(*types.AgentEvent) {},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// counter returns the configured tokenizer, or the shared one loaded on
// the first request. A nil result estimates from text length.
func (o *Orchestrator) counter() *tokenizer.Tokenizer {
	if o.tokenizer != nil {
		return o.tokenizer
	}
	tok, err := tokenizer.Shared()
	if err != nil {
		agentDebugLog.Warnf("tokenizer unavailable, estimating tokens: %v", err)
	}
	return tok
}

// Result is the outcome of a successful turn.
type Result struct {
	Answer    string
	Thinking  string
	Rounds    int // tool rounds executed
	ToolCalls int
	Usage     types.TokenUsage // summed over all requests that reported usage
}

// State returns where the current or last turn is.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

func (o *Orchestrator) setState(s State) {
	o.state.Store(int32(s))
}

// Run sends messages and executes requested tools until the model answers.
// prompt is the user turn as sent, context included; its bare instruction
// and the answer are recorded in the history on success. A failed turn
// leaves the history untouched.
func (o *Orchestrator) Run(ctx context.Context, messages []*types.Message, prompt string) (*Result, error) {
	res, err := o.run(ctx, messages)
	if err != nil {
		o.setState(StateFailed)
		agentDebugLog.Errorf("turn failed: %v", err)
		return nil, err
	}

	o.setState(StateFinalAnswer)
	if o.history != nil {
		if instruction := agentcontext.StripContext(prompt); instruction != "" {
			o.history.AddUnlessDuplicate(types.NewUserMessage(instruction))
		}
		o.history.Add(types.NewAssistantMessage(res.Answer))
	}
	return res, nil
}

func (o *Orchestrator) run(ctx context.Context, messages []*types.Message) (*Result, error) {
	if o.settings == nil || o.settings.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	maxRounds := o.maxRounds
	if maxRounds <= 0 {
		maxRounds = o.settings.MaxToolRounds
	}
	if maxRounds <= 0 {
		maxRounds = config.DefaultMaxToolRounds
	}

	conversation := append([]*types.Message(nil), messages...)
	definitions := o.registry.Definitions()
	res := &Result{}

	for round := 0; ; round++ {
		completion, err := o.request(ctx, round+1, conversation, definitions, res)
		if err != nil {
			return nil, err
		}

		if !completion.HasToolCalls() {
			return o.finish(completion, res)
		}

		if round >= maxRounds {
			return nil, fmt.Errorf("%w (limit %d)", ErrTooManyRounds, maxRounds)
		}

		o.setState(StateToolRequested)
		calls := mergeToolCalls(completion.ToolCalls)
		if o.singleTool && len(calls) > 1 {
			agentDebugLog.Debugf("round %d: dropping %d extra tool calls", round+1, len(calls)-1)
			calls = calls[:1]
		}

		o.setState(StateExecutingTool)
		results := make([]*types.Message, 0, len(calls))
		for _, call := range calls {
			output := o.dispatch(ctx, round+1, call)
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results = append(results, types.NewToolResultMessage(call, output))
		}

		conversation = append(conversation, types.NewToolCallMessage(calls))
		conversation = append(conversation, results...)
		res.Rounds++
		res.ToolCalls += len(calls)
	}
}

// request sends one completion request and accounts for its tokens.
func (o *Orchestrator) request(ctx context.Context, round int, conversation []*types.Message, definitions []llm.ToolDefinition, res *Result) (*llm.Completion, error) {
	o.setState(StateSending)
	promptTokens := o.counter().CountMessagesTokens(conversation)
	agentDebugLog.Debugf("round %d: sending %d messages (~%d prompt tokens)", round, len(conversation), promptTokens)
	o.emit(types.NewAPICallStartEvent(round, promptTokens))

	o.setState(StateAwaitingResponse)
	completion, err := o.provider.Complete(ctx, conversation, definitions)
	o.emit(types.NewAPICallEndEvent(round))
	if err != nil {
		return nil, err
	}

	if u := completion.Usage; u != nil {
		res.Usage.PromptTokens += u.PromptTokens
		res.Usage.CompletionTokens += u.CompletionTokens
		res.Usage.TotalTokens += u.TotalTokens
		o.emit(types.NewTokenUsageEvent(u.PromptTokens, u.CompletionTokens, u.TotalTokens))
	}
	return completion, nil
}

// finish turns a plain completion into the turn's answer.
func (o *Orchestrator) finish(completion *llm.Completion, res *Result) (*Result, error) {
	// An empty answer, or one that was all thinking, is still the answer.
	thinking, answer := parser.SplitThinking(completion.Content)

	if thinking != "" {
		o.emit(types.NewThinkingContentEvent(thinking))
	}
	o.emit(types.NewMessageEvent(types.RoleAssistant, answer))

	res.Answer = answer
	res.Thinking = thinking
	agentDebugLog.Infof("turn finished after %d tool rounds (%d calls)", res.Rounds, res.ToolCalls)
	return res, nil
}

// mergeToolCalls joins fragments: an entry without an ID, or repeating the
// previous ID, continues the previous call and its argument text is
// appended. Calls that never received an ID get a generated one.
func mergeToolCalls(raw []types.ToolCallRequest) []types.ToolCallRequest {
	var calls []types.ToolCallRequest
	for _, tc := range raw {
		n := len(calls)
		if n > 0 && (tc.ID == "" || tc.ID == calls[n-1].ID) {
			calls[n-1].Arguments += tc.Arguments
			if calls[n-1].Name == "" {
				calls[n-1].Name = tc.Name
			}
			continue
		}
		calls = append(calls, tc)
	}

	for i := range calls {
		if calls[i].ID == "" {
			calls[i].ID = "call_" + uuid.NewString()
		}
	}
	return calls
}
