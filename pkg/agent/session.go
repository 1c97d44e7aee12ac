package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	agentcontext "github.com/entrhq/vaultchat/pkg/agent/context"
	"github.com/entrhq/vaultchat/pkg/agent/memory"
	"github.com/entrhq/vaultchat/pkg/agent/tools"
	"github.com/entrhq/vaultchat/pkg/config"
	"github.com/entrhq/vaultchat/pkg/host"
	"github.com/entrhq/vaultchat/pkg/llm"
	vaulttools "github.com/entrhq/vaultchat/pkg/tools/vault"
	"github.com/entrhq/vaultchat/pkg/types"
)

// ViewID identifies the chat panel among host views.
const ViewID = "vaultchat"

// Entry is one item of the panel transcript.
type Entry struct {
	Role    types.MessageRole
	Content string
}

// Session is the chat panel. It implements host.View.
type Session struct {
	provider llm.Provider
	settings *config.Settings
	orchOpts []Option

	history   *memory.ConversationHistory
	selection *agentcontext.SelectionCache
	busy      atomic.Bool

	mu          sync.Mutex // guards the fields below
	host        host.Host
	builder     *agentcontext.Builder
	orch        *Orchestrator
	unsubscribe func()
	transcript  []Entry
	lastAnswer  string

	subMu       sync.Mutex
	subscribers map[int]func(*types.AgentEvent)
	nextSub     int
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithOrchestratorOptions passes options to the orchestrator built on mount.
func WithOrchestratorOptions(opts ...Option) SessionOption {
	return func(s *Session) {
		s.orchOpts = append(s.orchOpts, opts...)
	}
}

// WithConversationHistory replaces the session's history.
func WithConversationHistory(h *memory.ConversationHistory) SessionOption {
	return func(s *Session) {
		s.history = h
	}
}

// NewSession creates an unmounted panel. settings is read on every turn.
func NewSession(provider llm.Provider, settings *config.Settings, opts ...SessionOption) *Session {
	s := &Session{
		provider:    provider,
		settings:    settings,
		history:     memory.NewConversationHistory(),
		selection:   &agentcontext.SelectionCache{},
		subscribers: make(map[int]func(*types.AgentEvent)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns ViewID.
func (s *Session) ID() string {
	return ViewID
}

// OnMount wires the session to the host: the vault actions act on the
// host's store and active document, and editor selections are cached.
func (s *Session) OnMount(h host.Host) error {
	registry, err := tools.NewRegistry(vaulttools.All(h)...)
	if err != nil {
		return fmt.Errorf("failed to register vault tools: %w", err)
	}

	opts := append([]Option{WithHistory(s.history), WithEmitter(s.emit)}, s.orchOpts...)
	orch := NewOrchestrator(s.provider, registry, s.settings, opts...)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.host = h
	s.builder = agentcontext.NewBuilder(h.Store())
	s.orch = orch
	s.unsubscribe = h.OnEditorChange(func(change host.EditorChange) {
		s.selection.Set(change.Selection)
	})

	if len(s.transcript) == 0 {
		s.transcript = append(s.transcript, Entry{Role: types.RoleAssistant, Content: Greeting})
		s.history.Add(types.NewAssistantMessage(Greeting))
	}
	return nil
}

// OnUnmount detaches from the host. The conversation is kept.
func (s *Session) OnUnmount() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.host = nil
}

// Subscribe registers fn for every event the session emits.
func (s *Session) Subscribe(fn func(*types.AgentEvent)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Session) emit(event *types.AgentEvent) {
	s.subMu.Lock()
	subs := make([]func(*types.AgentEvent), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(event)
	}
}

// Busy reports whether a turn is running.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// State returns the orchestrator state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.orch == nil {
		return StateIdle
	}
	return s.orch.State()
}

// Send runs one turn for instruction. Blank input is ignored. A failed turn
// raises a host notice and an inline error entry, and returns the error.
func (s *Session) Send(ctx context.Context, instruction string) error {
	return s.send(ctx, instruction, nil)
}

// SendWatched is Send with watch receiving exactly the events of this
// turn. watch is registered only once the turn holds the busy guard, so a
// rejected or blank send delivers nothing to it.
func (s *Session) SendWatched(ctx context.Context, instruction string, watch func(*types.AgentEvent)) error {
	return s.send(ctx, instruction, watch)
}

func (s *Session) send(ctx context.Context, instruction string, watch func(*types.AgentEvent)) error {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil
	}

	s.mu.Lock()
	h, builder, orch := s.host, s.builder, s.orch
	s.mu.Unlock()
	if h == nil {
		return ErrNotMounted
	}

	if !s.busy.CompareAndSwap(false, true) {
		return ErrTurnInProgress
	}
	unwatch := func() {}
	if watch != nil {
		unwatch = s.Subscribe(watch)
	}
	s.emit(types.NewUpdateBusyEvent(true))
	defer func() {
		s.emit(types.NewUpdateBusyEvent(false))
		s.emit(types.NewTurnEndEvent())
		// The watcher must be gone before another turn can take the guard.
		unwatch()
		s.busy.Store(false)
	}()

	s.appendEntry(types.RoleUser, instruction)
	s.emit(types.NewMessageEvent(types.RoleUser, instruction))

	// The editor may hold a selection no change notification reported.
	s.selection.Set(h.Selection())
	active, _ := h.ActiveFile()

	snap, err := builder.Build(ctx, active, s.selection)
	if err != nil {
		return s.fail(h, err)
	}
	prompt := snap.Prompt(instruction)

	window := config.DefaultHistoryWindow
	if s.settings != nil && s.settings.HistoryWindow > 0 {
		window = s.settings.HistoryWindow
	}
	messages := []*types.Message{types.NewSystemMessage(SystemPrompt)}
	messages = append(messages, s.history.Recent(window)...)
	messages = append(messages, types.NewUserMessage(prompt))

	res, err := orch.Run(ctx, messages, prompt)
	if err != nil {
		return s.fail(h, err)
	}

	s.mu.Lock()
	s.transcript = append(s.transcript, Entry{Role: types.RoleAssistant, Content: res.Answer})
	s.lastAnswer = res.Answer
	s.mu.Unlock()
	return nil
}

func (s *Session) fail(h host.Host, err error) error {
	h.Notice("API Error: " + err.Error())
	s.appendEntry(types.RoleSystem, "Error: "+err.Error())
	s.emit(types.NewErrorEvent(err))
	return err
}

func (s *Session) appendEntry(role types.MessageRole, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, Entry{Role: role, Content: content})
}

// LastAnswer returns the most recent final answer, "" before the first.
func (s *Session) LastAnswer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAnswer
}

// Transcript returns a copy of the panel entries.
func (s *Session) Transcript() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.transcript...)
}

// History returns the conversation sent back to the model.
func (s *Session) History() *memory.ConversationHistory {
	return s.history
}

// Render returns the transcript with assistant answers rendered by the host.
func (s *Session) Render() string {
	s.mu.Lock()
	h := s.host
	entries := append([]Entry(nil), s.transcript...)
	s.mu.Unlock()

	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(SenderLabel(e.Role))
		sb.WriteString("\n")
		if e.Role == types.RoleAssistant && h != nil {
			sb.WriteString(h.RenderMarkdown(e.Content))
		} else {
			sb.WriteString(e.Content)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// SenderLabel names the author of an entry for display.
func SenderLabel(role types.MessageRole) string {
	switch role {
	case types.RoleUser:
		return "You"
	case types.RoleAssistant:
		return "Assistant"
	case types.RoleTool:
		return "Tool"
	default:
		return "System"
	}
}
