package agent

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/entrhq/vaultchat/pkg/config"
	"github.com/entrhq/vaultchat/pkg/llm"
	"github.com/entrhq/vaultchat/pkg/types"
	"github.com/entrhq/vaultchat/pkg/vault"
)

// scriptedProvider answers with its completions in order, repeating the
// last one, and records the messages of every request.
type scriptedProvider struct {
	mu          sync.Mutex
	completions []*llm.Completion
	err         error
	requests    [][]*types.Message
	tools       [][]llm.ToolDefinition
}

func (p *scriptedProvider) Complete(ctx context.Context, messages []*types.Message, tools []llm.ToolDefinition) (*llm.Completion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = append(p.requests, append([]*types.Message(nil), messages...))
	p.tools = append(p.tools, tools)
	if p.err != nil {
		return nil, p.err
	}
	i := min(len(p.requests)-1, len(p.completions)-1)
	return p.completions[i], nil
}

func (p *scriptedProvider) GetModel() string   { return "scripted" }
func (p *scriptedProvider) GetBaseURL() string { return "http://scripted" }

func (p *scriptedProvider) requestCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

func (p *scriptedProvider) lastRequest() []*types.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests[len(p.requests)-1]
}

func answer(text string) *llm.Completion {
	return &llm.Completion{Content: text, FinishReason: "stop"}
}

func toolCalls(calls ...types.ToolCallRequest) *llm.Completion {
	return &llm.Completion{ToolCalls: calls, FinishReason: "tool_calls"}
}

func testSettings() *config.Settings {
	s := config.DefaultSettings()
	s.APIKey = "sk-test"
	return &s
}

func newTestStore(t *testing.T, files map[string]string) *vault.FileStore {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o750))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
	store, err := vault.NewFileStore(dir, nil)
	require.NoError(t, err)
	return store
}

// eventLog collects emitted events.
type eventLog struct {
	mu     sync.Mutex
	events []*types.AgentEvent
}

func (l *eventLog) record(e *types.AgentEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) ofType(t types.AgentEventType) []*types.AgentEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*types.AgentEvent
	for _, e := range l.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
