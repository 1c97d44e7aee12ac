// Package vault is the note store the assistant reads and edits: a directory
// of markdown documents addressed by vault-relative, slash-separated paths.
package vault

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("vault: not found")
	ErrAlreadyExists = errors.New("vault: already exists")
	ErrNotDocument   = errors.New("vault: not a markdown document")
	ErrNotDirectory  = errors.New("vault: not a directory")
	ErrOutsideVault  = errors.New("vault: path escapes the vault")
)

// MarkdownExt is the extension of documents the assistant works with.
const MarkdownExt = ".md"

// Entry describes a file or folder in the vault.
type Entry struct {
	Path    string // vault-relative, slash-separated; "" is the root
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// Name returns the final path element.
func (e Entry) Name() string {
	return path.Base(e.Path)
}

// Basename returns the file name without its extension, the name notes are
// linked by.
func (e Entry) Basename() string {
	name := path.Base(e.Path)
	return strings.TrimSuffix(name, path.Ext(name))
}

// IsMarkdown reports whether the entry is a markdown document.
func (e Entry) IsMarkdown() bool {
	return !e.IsDir && strings.EqualFold(path.Ext(e.Path), MarkdownExt)
}

// Store is the document store. Paths are vault-relative.
type Store interface {
	// Read returns the full text of a document.
	Read(ctx context.Context, p string) (string, error)

	// CachedRead is Read backed by a cache invalidated by modification time.
	CachedRead(ctx context.Context, p string) (string, error)

	// Stat describes the file or folder at p.
	Stat(ctx context.Context, p string) (Entry, error)

	// ListMarkdown returns every non-ignored markdown document in the vault.
	ListMarkdown(ctx context.Context) ([]Entry, error)

	// ListDir returns the direct, non-ignored children of a folder.
	ListDir(ctx context.Context, dir string) ([]Entry, error)

	// WalkMarkdown returns the markdown documents under dir, recursively.
	WalkMarkdown(ctx context.Context, dir string) ([]Entry, error)

	// Create writes a new document, creating parent folders. It fails with
	// ErrAlreadyExists when anything exists at p.
	Create(ctx context.Context, p, content string) error

	// Append adds content to the end of an existing document.
	Append(ctx context.Context, p, content string) error

	// Links returns the unique link targets of a document in first-seen order.
	Links(ctx context.Context, p string) ([]string, error)

	// ResolveLink finds the file a link target in source points to.
	ResolveLink(ctx context.Context, target, source string) (Entry, error)

	// ProcessFrontMatter loads the document's front matter, lets fn edit it
	// and writes the document back.
	ProcessFrontMatter(ctx context.Context, p string, fn func(*FrontMatter) error) error
}
