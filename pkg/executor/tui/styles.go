package tui

import "github.com/charmbracelet/lipgloss"

// Palette. Adaptive colors keep the panel readable on light terminals.
var (
	accent = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#C4B5FD"}
	moss   = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#86EFAC"}
	amber  = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FCD34D"}
	rust   = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#FCA5A5"}
	slate  = lipgloss.AdaptiveColor{Light: "#64748B", Dark: "#94A3B8"}
	ink    = lipgloss.AdaptiveColor{Light: "#0F172A", Dark: "#F1F5F9"}
)

var (
	headerStyle    = lipgloss.NewStyle().Foreground(accent).Bold(true)
	tipsStyle      = lipgloss.NewStyle().Foreground(slate)
	statusBarStyle = lipgloss.NewStyle().Foreground(slate).Padding(0, 1)
	spinnerStyle   = lipgloss.NewStyle().Foreground(accent)

	// transcript
	userStyle       = lipgloss.NewStyle().Foreground(amber).Bold(true)
	assistantStyle  = lipgloss.NewStyle().Foreground(moss).Bold(true)
	thinkingStyle   = lipgloss.NewStyle().Foreground(slate).Italic(true)
	toolStyle       = lipgloss.NewStyle().Foreground(moss)
	toolResultStyle = lipgloss.NewStyle().Foreground(ink)
	errorStyle      = lipgloss.NewStyle().Foreground(rust)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)
)
