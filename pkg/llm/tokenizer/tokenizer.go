// Package tokenizer counts prompt tokens for logging and usage events.
package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"

	"github.com/entrhq/vaultchat/pkg/types"
)

func init() {
	// BPE ranks come from the files embedded in the loader module, never
	// from the network.
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// Encoding is the BPE used for counting. DeepSeek does not publish its
// tokenizer, so counts are estimates.
const Encoding = "cl100k_base"

// perMessageOverhead approximates the role and separator tokens of the chat format.
const perMessageOverhead = 4

// Tokenizer counts tokens. A nil *Tokenizer falls back to a length estimate.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

var (
	sharedOnce sync.Once
	shared     *Tokenizer
	sharedErr  error
)

// Shared returns a process-wide tokenizer, loading the encoding on first
// use. On failure it returns a nil *Tokenizer, which estimates, and the
// load error.
func Shared() (*Tokenizer, error) {
	sharedOnce.Do(func() {
		shared, sharedErr = New()
	})
	return shared, sharedErr
}

// New parses the embedded encoding.
func New() (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", Encoding, err)
	}
	return &Tokenizer{enc: enc}, nil
}

// CountTokens returns the number of tokens in text.
func (t *Tokenizer) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	if t == nil || t.enc == nil {
		return estimate(text)
	}
	return len(t.enc.Encode(text, nil, nil))
}

// CountMessagesTokens returns the token count of a message list including
// tool call arguments and per-message overhead.
func (t *Tokenizer) CountMessagesTokens(messages []*types.Message) int {
	total := 0
	for _, msg := range messages {
		total += perMessageOverhead
		total += t.CountTokens(msg.Content)
		for _, call := range msg.ToolCalls {
			total += t.CountTokens(call.Name) + t.CountTokens(call.Arguments)
		}
	}
	return total
}

// estimate is roughly four characters per token.
func estimate(text string) int {
	n := (len(text) + 3) / 4
	if n == 0 {
		n = 1
	}
	return n
}
