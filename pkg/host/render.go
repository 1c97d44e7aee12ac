package host

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Renderer renders markdown for the terminal with glamour.
type Renderer struct {
	term *glamour.TermRenderer
}

// NewRenderer creates a renderer wrapping at width. style is "auto" or a
// glamour standard style name such as "dark", "light" or "notty".
func NewRenderer(width int, style string) (*Renderer, error) {
	styleOpt := glamour.WithAutoStyle()
	if style != "" && style != "auto" {
		styleOpt = glamour.WithStandardStyle(style)
	}

	term, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return nil, err
	}
	return &Renderer{term: term}, nil
}

// Render returns the rendered text, or the input unchanged when rendering
// fails or the renderer is nil.
func (r *Renderer) Render(markdown string) string {
	if r == nil || r.term == nil {
		return markdown
	}
	out, err := r.term.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(out, "\n")
}
