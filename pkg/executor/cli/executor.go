// Package cli provides a line-oriented terminal front end for the chat panel.
//
// Example usage:
//
//	h := host.NewLocal(store, renderer)
//	session := agent.NewSession(provider, &settings)
//	_ = h.RegisterView(session)
//
//	executor := cli.NewExecutor(session, h)
//	if err := executor.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/vaultchat/pkg/agent"
	"github.com/entrhq/vaultchat/pkg/host"
	"github.com/entrhq/vaultchat/pkg/types"
)

var (
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	systemStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	mutedStyle     = lipgloss.NewStyle().Faint(true)
)

const helpText = `Commands:
  /open <path>     focus a note (context for the next message)
  /close           clear the active note
  /select <text>   highlight text in the active note
  /ls [dir]        list a vault folder
  /history         show the conversation
  /copy            copy the last answer to the clipboard
  /help            show this help
  exit, quit       leave`

// Executor reads instructions from a terminal and sends them to a session.
type Executor struct {
	session *agent.Session
	host    *host.Local
	reader  *bufio.Reader
	writer  io.Writer
	copy    func(string) error

	// Display options
	showThinking bool
	showTools    bool
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*Executor)

// WithShowThinking enables/disables displaying the model's reasoning.
func WithShowThinking(show bool) ExecutorOption {
	return func(e *Executor) {
		e.showThinking = show
	}
}

// WithShowTools enables/disables the tool activity lines.
func WithShowTools(show bool) ExecutorOption {
	return func(e *Executor) {
		e.showTools = show
	}
}

// WithWriter sets a custom output writer (default is os.Stdout).
func WithWriter(w io.Writer) ExecutorOption {
	return func(e *Executor) {
		e.writer = w
	}
}

// WithReader sets a custom input reader (default is os.Stdin).
func WithReader(r io.Reader) ExecutorOption {
	return func(e *Executor) {
		e.reader = bufio.NewReader(r)
	}
}

// WithClipboard replaces the clipboard writer used by /copy.
func WithClipboard(fn func(string) error) ExecutorOption {
	return func(e *Executor) {
		e.copy = fn
	}
}

// NewExecutor creates a CLI executor for session hosted by h.
func NewExecutor(session *agent.Session, h *host.Local, opts ...ExecutorOption) *Executor {
	e := &Executor{
		session:   session,
		host:      h,
		reader:    bufio.NewReader(os.Stdin),
		writer:    os.Stdout,
		copy:      clipboard.WriteAll,
		showTools: true,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Run mounts the session and reads instructions until exit or EOF.
func (e *Executor) Run(ctx context.Context) error {
	if _, err := e.host.Mount(e.session.ID()); err != nil {
		return fmt.Errorf("failed to mount chat panel: %w", err)
	}
	defer e.host.Unmount(e.session.ID())

	defer e.session.Subscribe(e.handleEvent)()
	defer e.host.OnNotice(func(msg string) {
		fmt.Fprintln(e.writer, mutedStyle.Render("notice: "+msg))
	})()

	fmt.Fprintln(e.writer, "vaultchat")
	fmt.Fprintln(e.writer, "Type your message and press Enter. Type /help for commands, 'exit' or 'quit' to leave.")
	fmt.Fprintln(e.writer)
	fmt.Fprint(e.writer, e.session.Render())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Fprint(e.writer, "> ")
		input, err := e.reader.ReadString('\n')
		eof := errors.Is(err, io.EOF)
		if err != nil && !eof {
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "exit" || input == "quit" {
			return nil
		}

		switch {
		case input == "":
		case strings.HasPrefix(input, "/"):
			e.handleCommand(ctx, input)
		default:
			// Failures are already reported through events and notices.
			_ = e.session.Send(ctx, input)
		}

		if eof {
			return nil
		}
	}
}

// handleCommand runs a slash command.
func (e *Executor) handleCommand(ctx context.Context, input string) {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/open":
		if err := e.host.Open(ctx, arg); err != nil {
			e.printError(err)
			return
		}
		fmt.Fprintln(e.writer, mutedStyle.Render("active note: "+arg))
	case "/close":
		_ = e.host.Open(ctx, "")
		fmt.Fprintln(e.writer, mutedStyle.Render("no active note"))
	case "/select":
		if err := e.host.Select(arg); err != nil {
			e.printError(err)
		}
	case "/ls":
		entries, err := e.host.Store().ListDir(ctx, arg)
		if err != nil {
			e.printError(err)
			return
		}
		for _, entry := range entries {
			if entry.IsDir {
				fmt.Fprintln(e.writer, entry.Path+"/")
			} else {
				fmt.Fprintln(e.writer, entry.Path)
			}
		}
	case "/history":
		fmt.Fprint(e.writer, e.session.Render())
	case "/copy":
		answer := e.session.LastAnswer()
		if answer == "" {
			fmt.Fprintln(e.writer, mutedStyle.Render("nothing to copy yet"))
			return
		}
		if err := e.copy(answer); err != nil {
			e.printError(err)
			return
		}
		fmt.Fprintln(e.writer, mutedStyle.Render("Copied!"))
	case "/help":
		fmt.Fprintln(e.writer, helpText)
	default:
		fmt.Fprintf(e.writer, "unknown command %s (try /help)\n", name)
	}
}

// handleEvent renders a single session event.
func (e *Executor) handleEvent(event *types.AgentEvent) {
	switch event.Type {
	case types.EventTypeThinkingContent:
		if e.showThinking {
			fmt.Fprintln(e.writer, mutedStyle.Render("[thinking] "+event.Content))
		}
	case types.EventTypeToolCall:
		if e.showTools {
			fmt.Fprintln(e.writer, mutedStyle.Render("=> Used tool: "+event.ToolName))
		}
	case types.EventTypeToolResult:
		if e.showTools {
			fmt.Fprintln(e.writer, mutedStyle.Render("=> Result: "+preview(event.ToolOutput)))
		}
	case types.EventTypeToolResultError:
		if e.showTools {
			fmt.Fprintln(e.writer, mutedStyle.Render(fmt.Sprintf("=> Tool error (%s): %v", event.ToolName, event.Error)))
		}
	case types.EventTypeMessage:
		if event.Role == types.RoleAssistant {
			fmt.Fprintln(e.writer, assistantStyle.Render(agent.SenderLabel(event.Role)))
			fmt.Fprintln(e.writer, e.host.RenderMarkdown(event.Content))
		}
	case types.EventTypeError:
		e.printError(event.Error)
	}
}

func (e *Executor) printError(err error) {
	fmt.Fprintln(e.writer, systemStyle.Render("Error: ")+err.Error())
}

// preview shortens tool output to one line.
func preview(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > 50 {
		return string(r[:50]) + "..."
	}
	return s
}
