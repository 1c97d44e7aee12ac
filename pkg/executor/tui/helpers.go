package tui

import (
	"math/rand"
	"strings"
)

// getRandomLoadingMessage returns a random loading message to display while a turn runs
func getRandomLoadingMessage() string {
	messages := []string{
		"Thinking...",
		"Reading your notes...",
		"Searching the vault...",
		"Connecting the dots...",
		"Leafing through the pages...",
		"Consulting the index cards...",
		"Following the backlinks...",
		"Organizing thoughts...",
	}
	return messages[rand.Intn(len(messages))]
}

// truncateLine flattens s to one line of at most n runes.
func truncateLine(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}

// recalculateLayout sizes the viewport to the space left by the chrome.
func (m *model) recalculateLayout() {
	inputWidth := max(m.width-6, 10)
	m.textarea.SetWidth(inputWidth)

	// header, status, loading line, input box (3) and bottom bar
	chrome := 7 + m.textarea.Height()
	vpHeight := max(m.height-chrome, 3)
	m.viewport.Width = m.width
	m.viewport.Height = vpHeight
}

// refreshViewport shows the content buffer scrolled to the bottom.
func (m *model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.content.String())
	m.viewport.GotoBottom()
}
