package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// View renders the entire TUI interface.
func (m *model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.buildHeader(),
		m.buildTopStatus(),
		m.viewport.View(),
		m.buildLoadingIndicator(),
		m.buildInputBox(),
		m.buildBottomBar(),
	)
}

func (m *model) buildHeader() string {
	return headerStyle.Render("  vaultchat")
}

// buildTopStatus shows the active note and token usage.
func (m *model) buildTopStatus() string {
	active := "none"
	if p, ok := m.host.ActiveFile(); ok {
		active = p
	}
	status := fmt.Sprintf("Active note: %s • Prompt ~%d tokens", active, m.lastPromptEstimate)
	if m.totalTokens > 0 {
		status += fmt.Sprintf(" • Used %d in / %d out", m.totalPromptTokens, m.totalCompletionTokens)
	}
	return statusBarStyle.Render(status)
}

// buildLoadingIndicator renders the spinner while a turn runs
func (m *model) buildLoadingIndicator() string {
	if !m.busy {
		if m.toast != "" {
			return statusBarStyle.Render(m.toast)
		}
		return ""
	}
	return spinnerStyle.Padding(0, 1).Render(fmt.Sprintf("%s %s", m.spinner.View(), m.loadingMessage))
}

func (m *model) buildInputBox() string {
	return inputBoxStyle.Width(max(m.width-4, 10)).Render(m.textarea.View())
}

func (m *model) buildBottomBar() string {
	return tipsStyle.Render("  Enter to send • Alt+Enter for new line • Ctrl+Y copy last answer • Esc/Ctrl+C to exit")
}
