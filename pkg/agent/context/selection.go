package context

import "sync"

// SelectionCache remembers the last non-empty editor selection until a turn
// consumes it.
type SelectionCache struct {
	mu   sync.Mutex
	text string
}

// Set caches text. Empty text never replaces a cached selection.
func (c *SelectionCache) Set(text string) {
	if text == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
}

// Peek returns the cached selection without consuming it.
func (c *SelectionCache) Peek() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Take returns the cached selection and clears it. A nil cache is empty.
func (c *SelectionCache) Take() string {
	if c == nil {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	text := c.text
	c.text = ""
	return text
}
