// Package host models the workspace the chat panel lives in: the note store,
// the active document, editor selections, notices and markdown rendering.
package host

import (
	"github.com/entrhq/vaultchat/pkg/vault"
)

// EditorChange is delivered whenever the active document or its selection changes.
type EditorChange struct {
	Path      string
	Selection string
}

// Host is what a panel may use from the surrounding workspace.
type Host interface {
	// Store returns the note store.
	Store() vault.Store

	// ActiveFile returns the vault-relative path of the focused document.
	ActiveFile() (string, bool)

	// Selection returns the text currently highlighted in the active document.
	Selection() string

	// OnEditorChange subscribes fn to editor changes. The returned function
	// removes the subscription.
	OnEditorChange(fn func(EditorChange)) (unsubscribe func())

	// Notice shows a short transient message to the user.
	Notice(message string)

	// RenderMarkdown renders markdown for display.
	RenderMarkdown(markdown string) string
}

// View is a panel component the host mounts and unmounts.
type View interface {
	// ID identifies the view among registered views.
	ID() string

	// OnMount is called when the view is opened.
	OnMount(h Host) error

	// OnUnmount is called when the view is closed.
	OnUnmount()

	// Render returns the panel contents rendered for display.
	Render() string
}
