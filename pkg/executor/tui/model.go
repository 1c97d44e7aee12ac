package tui

import (
	"context"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/entrhq/vaultchat/pkg/agent"
	"github.com/entrhq/vaultchat/pkg/host"
)

// model represents the state of the TUI application.
type model struct {
	// Bubble Tea components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// Session integration
	ctx     context.Context
	session *agent.Session
	host    *host.Local
	copy    func(string) error

	// Content buffer shown in the viewport
	content *strings.Builder

	// UI state
	toast     string
	showTools bool

	// Session state
	busy           bool
	loadingMessage string

	// Window dimensions
	width  int
	height int
	ready  bool

	// Token usage tracking
	totalPromptTokens     int
	totalCompletionTokens int
	totalTokens           int
	lastPromptEstimate    int
}

// turnDoneMsg is sent when Session.Send returns.
type turnDoneMsg struct{ err error }

// noticeMsg carries a host notice.
type noticeMsg struct{ text string }

func initialModel(ctx context.Context, session *agent.Session, h *host.Local) *model {
	ta := textarea.New()
	ta.Placeholder = "Ask about your notes... (/help for commands)"
	ta.Focus()
	ta.Prompt = "┃ "
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	m := &model{
		viewport:  viewport.New(0, 0),
		textarea:  ta,
		spinner:   sp,
		ctx:       ctx,
		session:   session,
		host:      h,
		copy:      clipboard.WriteAll,
		content:   &strings.Builder{},
		showTools: true,
	}
	m.content.WriteString(session.Render())
	return m
}
