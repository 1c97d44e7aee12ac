// Package tui provides a full-screen terminal front end for the chat panel.
//
// The TUI codebase is split into multiple files:
// - executor.go: Executor and program lifecycle
// - model.go: Core model structure and state
// - update.go: Bubble Tea Update function and message handling
// - view.go: Bubble Tea View function and rendering
// - events.go: Session event processing
// - helpers.go: Utility functions
// - styles.go: Color schemes and styling
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/vaultchat/pkg/agent"
	"github.com/entrhq/vaultchat/pkg/host"
	"github.com/entrhq/vaultchat/pkg/logging"
	"github.com/entrhq/vaultchat/pkg/types"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("tui")
	if err != nil {
		debugLog.Warnf("Failed to initialize tui logger, using stderr fallback: %v", err)
	}
}

// Executor runs the chat panel as a Bubble Tea program.
type Executor struct {
	session   *agent.Session
	host      *host.Local
	showTools bool
	program   *tea.Program
}

// NewExecutor creates a TUI executor for session hosted by h.
func NewExecutor(session *agent.Session, h *host.Local, showTools bool) *Executor {
	return &Executor{
		session:   session,
		host:      h,
		showTools: showTools,
	}
}

// Run mounts the session and blocks until the user exits.
func (e *Executor) Run(ctx context.Context) error {
	debugLog.Infof("TUI executor starting")

	if _, err := e.host.Mount(e.session.ID()); err != nil {
		return fmt.Errorf("failed to mount chat panel: %w", err)
	}
	defer e.host.Unmount(e.session.ID())

	m := initialModel(ctx, e.session, e.host)
	m.showTools = e.showTools

	e.program = tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	// Session events and host notices arrive on other goroutines.
	defer e.session.Subscribe(func(event *types.AgentEvent) {
		e.program.Send(event)
	})()
	defer e.host.OnNotice(func(msg string) {
		e.program.Send(noticeMsg{text: msg})
	})()

	if _, err := e.program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI program: %w", err)
	}
	return nil
}
