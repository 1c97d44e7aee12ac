// Package memory holds the conversation a session sends back to the model.
package memory

import (
	"sync"

	"github.com/entrhq/vaultchat/pkg/types"
)

// DefaultWindow is how many recent messages are resent with each request.
const DefaultWindow = 10

// ConversationHistory is an append-only log of user and assistant turns.
// The full log is kept for display; Recent bounds what is resent.
// All operations are thread-safe.
type ConversationHistory struct {
	messages []*types.Message
	mu       sync.RWMutex
}

// NewConversationHistory creates an empty history.
func NewConversationHistory() *ConversationHistory {
	return &ConversationHistory{
		messages: make([]*types.Message, 0),
	}
}

// Add appends a message.
func (h *ConversationHistory) Add(msg *types.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
}

// AddUnlessDuplicate appends msg unless the last entry has the same role and
// content. It reports whether msg was added.
func (h *ConversationHistory) AddUnlessDuplicate(msg *types.Message) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.messages); n > 0 {
		last := h.messages[n-1]
		if last.Role == msg.Role && last.Content == msg.Content {
			return false
		}
	}
	h.messages = append(h.messages, msg)
	return true
}

// Recent returns up to n of the newest messages, oldest first.
// n <= 0 returns nothing.
func (h *ConversationHistory) Recent(n int) []*types.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 {
		return []*types.Message{}
	}
	start := max(0, len(h.messages)-n)
	out := make([]*types.Message, len(h.messages)-start)
	copy(out, h.messages[start:])
	return out
}

// All returns a copy of every message.
func (h *ConversationHistory) All() []*types.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*types.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of messages.
func (h *ConversationHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}

// Last returns the newest message, or nil when empty.
func (h *ConversationHistory) Last() *types.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.messages) == 0 {
		return nil
	}
	return h.messages[len(h.messages)-1]
}

// Clear removes all messages.
func (h *ConversationHistory) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = make([]*types.Message, 0)
}
