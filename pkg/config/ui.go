package config

import (
	"fmt"
	"sync"
)

const (
	// SectionIDUI is the identifier for the UI settings section
	SectionIDUI = "ui"

	defaultWordWrap         = 80
	defaultMarkdownStyle    = "auto"
	defaultShowToolActivity = true
)

var markdownStyles = map[string]bool{
	"auto":  true,
	"dark":  true,
	"light": true,
	"notty": true,
}

// UISection manages how the panel renders conversation entries.
type UISection struct {
	WordWrap         int    `json:"word_wrap"`
	MarkdownStyle    string `json:"markdown_style"`
	ShowToolActivity bool   `json:"show_tool_activity"`
	mu               sync.RWMutex
}

// NewUISection creates a new UI section with default settings.
func NewUISection() *UISection {
	s := &UISection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *UISection) ID() string {
	return SectionIDUI
}

// Title returns the section title.
func (s *UISection) Title() string {
	return "UI Settings"
}

// Description returns the section description.
func (s *UISection) Description() string {
	return "Markdown rendering width and style, and whether tool activity is shown in the panel."
}

// Data returns the current configuration data.
func (s *UISection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]any{
		"word_wrap":          s.WordWrap,
		"markdown_style":     s.MarkdownStyle,
		"show_tool_activity": s.ShowToolActivity,
	}
}

// SetData updates the configuration from the provided data.
func (s *UISection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "word_wrap":
			if err := setInt(&s.WordWrap, key, value); err != nil {
				return err
			}
		case "markdown_style":
			if err := setString(&s.MarkdownStyle, key, value); err != nil {
				return err
			}
		case "show_tool_activity":
			enabled, ok := value.(bool)
			if !ok {
				return fmt.Errorf("invalid value type for show_tool_activity: expected bool, got %T", value)
			}
			s.ShowToolActivity = enabled
		default:
			// Ignore unknown keys for forward compatibility
			continue
		}
	}

	return nil
}

// Validate validates the current configuration.
func (s *UISection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.WordWrap < 20 || s.WordWrap > 400 {
		return fmt.Errorf("word_wrap must be between 20 and 400, got %d", s.WordWrap)
	}
	if !markdownStyles[s.MarkdownStyle] {
		return fmt.Errorf("unknown markdown_style %q", s.MarkdownStyle)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *UISection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.WordWrap = defaultWordWrap
	s.MarkdownStyle = defaultMarkdownStyle
	s.ShowToolActivity = defaultShowToolActivity
}

// RenderSettings returns the word wrap width and markdown style.
func (s *UISection) RenderSettings() (int, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.WordWrap, s.MarkdownStyle
}

// ShouldShowToolActivity reports whether tool calls are rendered in the panel.
func (s *UISection) ShouldShowToolActivity() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ShowToolActivity
}
