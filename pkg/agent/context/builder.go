package context

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/entrhq/vaultchat/pkg/logging"
	"github.com/entrhq/vaultchat/pkg/vault"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("context")
	if err != nil {
		debugLog.Warnf("Failed to initialize context logger, using stderr fallback: %v", err)
	}
}

const (
	// Marker starts every context block appended to an instruction.
	Marker = "\n\n[System Info"

	// LinkedNoteLimit is how many characters of a linked note are included.
	LinkedNoteLimit = 1500

	truncationSuffix = "... (truncated)"
)

// LinkedNote is an excerpt of a document the active document links to.
type LinkedNote struct {
	Basename string
	Excerpt  string
}

// Snapshot is the context gathered for one user turn. Selection and
// Document are mutually exclusive; a selection always wins.
type Snapshot struct {
	ActiveName string // file name of the active document, "" when none
	Selection  string
	Document   string
	HasDoc     bool
	Linked     []LinkedNote
}

// Empty reports whether the snapshot adds nothing to the instruction.
func (s *Snapshot) Empty() bool {
	return s.ActiveName == "" && len(s.Linked) == 0
}

// String renders the context blocks. Each block starts with Marker.
func (s *Snapshot) String() string {
	var sb strings.Builder

	switch {
	case s.Selection != "":
		fmt.Fprintf(&sb, "%s: The user highlighted the following text in the note \"%s\". Focus your answer specifically around this highlighted text:\n---\n%s\n---]",
			Marker, s.ActiveName, s.Selection)
	case s.HasDoc:
		fmt.Fprintf(&sb, "%s: The user is currently viewing the note \"%s\". Its full content is:\n---\n%s\n---]",
			Marker, s.ActiveName, s.Document)
	}

	if len(s.Linked) > 0 {
		sb.WriteString(Marker)
		sb.WriteString(": The active note contains links to the following notes. Here is their content for additional context:\n")
		for _, n := range s.Linked {
			fmt.Fprintf(&sb, "\n--- Linked Note: [[%s]] ---\n%s\n", n.Basename, n.Excerpt)
		}
		sb.WriteString("]")
	}
	return sb.String()
}

// Prompt returns the instruction followed by the context blocks.
func (s *Snapshot) Prompt(instruction string) string {
	return instruction + s.String()
}

// StripContext recovers the bare instruction from a prompt built by Prompt.
func StripContext(prompt string) string {
	before, _, _ := strings.Cut(prompt, Marker)
	return before
}

// Builder gathers context from the document store.
type Builder struct {
	store vault.Store
}

// NewBuilder creates a Builder reading from store.
func NewBuilder(store vault.Store) *Builder {
	return &Builder{store: store}
}

// Build gathers the context for a turn. activePath is the active document,
// "" when none. A cached selection is consumed only when a document is
// active. Unresolvable or unreadable links are skipped.
func (b *Builder) Build(ctx context.Context, activePath string, sel *SelectionCache) (*Snapshot, error) {
	snap := &Snapshot{}
	if activePath == "" {
		return snap, nil
	}
	snap.ActiveName = path.Base(activePath)

	if text := sel.Take(); text != "" {
		snap.Selection = text
	} else {
		content, err := b.store.Read(ctx, activePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read active note: %w", err)
		}
		snap.Document = content
		snap.HasDoc = true
	}

	snap.Linked = b.linkedNotes(ctx, activePath)
	return snap, nil
}

func (b *Builder) linkedNotes(ctx context.Context, activePath string) []LinkedNote {
	targets, err := b.store.Links(ctx, activePath)
	if err != nil {
		debugLog.Warnf("could not read links of %s: %v", activePath, err)
		return nil
	}

	var notes []LinkedNote
	for _, target := range targets {
		entry, err := b.store.ResolveLink(ctx, target, activePath)
		if err != nil || !entry.IsMarkdown() {
			debugLog.Debugf("skipping link %q from %s: %v", target, activePath, err)
			continue
		}
		content, err := b.store.Read(ctx, entry.Path)
		if err != nil {
			debugLog.Debugf("skipping unreadable link %s: %v", entry.Path, err)
			continue
		}
		notes = append(notes, LinkedNote{
			Basename: entry.Basename(),
			Excerpt:  Truncate(content, LinkedNoteLimit),
		})
	}
	return notes
}

// Truncate cuts s to limit characters and marks the cut.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + truncationSuffix
}
