package tokenizer

import (
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/vaultchat/pkg/types"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// blockNetwork fails every request made through the default transport and
// returns the number of attempts.
func blockNetwork(t *testing.T) *atomic.Int32 {
	t.Helper()
	var attempts atomic.Int32
	orig := http.DefaultTransport
	http.DefaultTransport = roundTripFunc(func(r *http.Request) (*http.Response, error) {
		attempts.Add(1)
		return nil, errors.New("network disabled in test: " + r.URL.String())
	})
	t.Cleanup(func() { http.DefaultTransport = orig })
	return &attempts
}

func TestNew_LoadsOffline(t *testing.T) {
	attempts := blockNetwork(t)

	tok, err := New()
	require.NoError(t, err)
	assert.Equal(t, 2, tok.CountTokens("hello world"))
	assert.Zero(t, attempts.Load())

	shared, err := Shared()
	require.NoError(t, err)
	require.NotNil(t, shared)
	again, _ := Shared()
	assert.Same(t, shared, again)
	assert.Zero(t, attempts.Load())
}

func TestNilTokenizerEstimates(t *testing.T) {
	var tok *Tokenizer

	assert.Equal(t, 0, tok.CountTokens(""))
	assert.Equal(t, 1, tok.CountTokens("hi"))
	assert.Equal(t, 3, tok.CountTokens("twelve chars"))
}

func TestCountMessagesTokens(t *testing.T) {
	tok, err := New()
	require.NoError(t, err)

	call := types.ToolCallRequest{ID: "1", Name: "search_vault", Arguments: `{"query":"apples"}`}
	messages := []*types.Message{
		types.NewSystemMessage("You are a helpful assistant."),
		types.NewUserMessage("Find my notes about apples"),
		types.NewToolCallMessage([]types.ToolCallRequest{call}),
	}

	total := tok.CountMessagesTokens(messages)
	content := tok.CountTokens("You are a helpful assistant.") + tok.CountTokens("Find my notes about apples")

	assert.Greater(t, total, content, "overhead and tool call arguments are counted")
	assert.GreaterOrEqual(t, total, 3*perMessageOverhead)
}
