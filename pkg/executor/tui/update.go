package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/vaultchat/pkg/types"
)

// Init starts the cursor blink and spinner.
func (m *model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Update handles all state updates for the TUI model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.recalculateLayout()
		m.ready = true
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlY:
			m.copyLastAnswer()
			return m, nil
		case tea.KeyEnter:
			return m, m.submit()
		}

	case *types.AgentEvent:
		m.handleAgentEvent(msg)
		m.refreshViewport()
		return m, nil

	case turnDoneMsg:
		m.busy = false
		if msg.err != nil {
			debugLog.Warnf("turn failed: %v", msg.err)
		}
		m.refreshViewport()
		return m, nil

	case noticeMsg:
		m.toast = msg.text
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit sends the input to the session or runs a slash command.
func (m *model) submit() tea.Cmd {
	input := strings.TrimSpace(m.textarea.Value())
	if input == "" {
		return nil
	}
	if m.busy {
		m.toast = "Still working on the previous message"
		return nil
	}
	m.textarea.Reset()
	m.toast = ""

	if strings.HasPrefix(input, "/") {
		m.handleSlashCommand(input)
		m.refreshViewport()
		return nil
	}

	m.busy = true
	m.loadingMessage = getRandomLoadingMessage()
	session, ctx := m.session, m.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return turnDoneMsg{err: session.Send(ctx, input)}
	})
}

// handleSlashCommand runs /open, /close, /select and /help.
func (m *model) handleSlashCommand(input string) {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/open":
		if err := m.host.Open(m.ctx, arg); err != nil {
			m.toast = "Error: " + err.Error()
			return
		}
		m.toast = "Active note: " + arg
	case "/close":
		_ = m.host.Open(m.ctx, "")
		m.toast = "No active note"
	case "/select":
		if err := m.host.Select(arg); err != nil {
			m.toast = "Error: " + err.Error()
			return
		}
		m.toast = "Selection cached for the next message"
	case "/help":
		m.toast = "/open <path> • /close • /select <text> • Ctrl+Y copies the last answer"
	default:
		m.toast = "Unknown command " + name
	}
}

func (m *model) copyLastAnswer() {
	answer := m.session.LastAnswer()
	if answer == "" {
		m.toast = "Nothing to copy yet"
		return
	}
	if err := m.copy(answer); err != nil {
		m.toast = "Copy failed: " + err.Error()
		return
	}
	m.toast = "Copied!"
}
