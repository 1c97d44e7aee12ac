package vault

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_ReadAndStat(t *testing.T) {
	s := newTestVault(t, map[string]string{
		"notes/a.md":     "alpha",
		"image.png":      "png",
		".obsidian/x.md": "hidden",
	})
	ctx := context.Background()

	content, err := s.Read(ctx, "notes/a.md")
	require.NoError(t, err)
	assert.Equal(t, "alpha", content)

	entry, err := s.Stat(ctx, "/notes/a.md")
	require.NoError(t, err)
	assert.Equal(t, "notes/a.md", entry.Path)
	assert.Equal(t, "a", entry.Basename())
	assert.True(t, entry.IsMarkdown())

	dir, err := s.Stat(ctx, "notes")
	require.NoError(t, err)
	assert.True(t, dir.IsDir)
	assert.False(t, dir.IsMarkdown())

	_, err = s.Read(ctx, "missing.md")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Read(ctx, "image.png")
	assert.ErrorIs(t, err, ErrNotDocument)

	_, err = s.Read(ctx, "notes")
	assert.ErrorIs(t, err, ErrNotDocument)

	_, err = s.Read(ctx, "../outside.md")
	assert.ErrorIs(t, err, ErrOutsideVault)
}

func TestFileStore_CachedRead(t *testing.T) {
	s := newTestVault(t, map[string]string{"a.md": "v1"})
	ctx := context.Background()

	got, err := s.CachedRead(ctx, "a.md")
	require.NoError(t, err)
	assert.Equal(t, "v1", got)

	abs := filepath.Join(s.Root(), "a.md")
	require.NoError(t, os.WriteFile(abs, []byte("version two"), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(abs, later, later))

	got, err = s.CachedRead(ctx, "a.md")
	require.NoError(t, err)
	assert.Equal(t, "version two", got)
}

func TestFileStore_ListMarkdown(t *testing.T) {
	s := newTestVault(t, map[string]string{
		"b.md":               "b",
		"a/one.md":           "1",
		"a/deep/two.MD":      "2",
		"a/pic.png":          "x",
		".obsidian/cache.md": "ignored",
	})

	entries, err := s.ListMarkdown(context.Background())
	require.NoError(t, err)

	var paths []string
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{"a/deep/two.MD", "a/one.md", "b.md"}, paths)
}

func TestFileStore_WalkMarkdownAndListDir(t *testing.T) {
	s := newTestVault(t, map[string]string{
		"projects/x.md":         "x",
		"projects/sub/y.md":     "y",
		"projects/readme.txt":   "t",
		"other/z.md":            "z",
		"empty-ish/picture.png": "p",
	})
	ctx := context.Background()

	docs, err := s.WalkMarkdown(ctx, "projects")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "projects/sub/y.md", docs[0].Path)
	assert.Equal(t, "projects/x.md", docs[1].Path)

	docs, err = s.WalkMarkdown(ctx, "empty-ish")
	require.NoError(t, err)
	assert.Empty(t, docs)

	_, err = s.WalkMarkdown(ctx, "projects/x.md")
	assert.ErrorIs(t, err, ErrNotDirectory)

	_, err = s.WalkMarkdown(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	children, err := s.ListDir(ctx, "projects")
	require.NoError(t, err)
	require.Len(t, children, 3)
	assert.Equal(t, "projects/sub", children[0].Path)
	assert.True(t, children[0].IsDir)
	assert.Equal(t, "projects/readme.txt", children[1].Path)
	assert.Equal(t, "projects/x.md", children[2].Path)
}

func TestFileStore_Create(t *testing.T) {
	s := newTestVault(t, map[string]string{"exists.md": "original"})
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, "new/folder/note.md", "# Hello"))
	assert.Equal(t, "# Hello", readRaw(t, s, "new/folder/note.md"))

	err := s.Create(ctx, "exists.md", "overwrite")
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.Equal(t, "original", readRaw(t, s, "exists.md"))

	err = s.Create(ctx, "new", "folder exists")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	err = s.Create(ctx, "../escape.md", "x")
	assert.ErrorIs(t, err, ErrOutsideVault)
}

func TestFileStore_Append(t *testing.T) {
	s := newTestVault(t, map[string]string{"log.md": "line1"})
	ctx := context.Background()

	_, err := s.CachedRead(ctx, "log.md")
	require.NoError(t, err)

	require.NoError(t, s.Append(ctx, "log.md", "\nline2"))
	assert.Equal(t, "line1\nline2", readRaw(t, s, "log.md"))

	got, err := s.CachedRead(ctx, "log.md")
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2", got)

	err = s.Append(ctx, "missing.md", "x")
	assert.ErrorIs(t, err, ErrNotFound)
	_, statErr := os.Stat(filepath.Join(s.Root(), "missing.md"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileStore_ResolveLink(t *testing.T) {
	s := newTestVault(t, map[string]string{
		"index.md":                "",
		"people/Alice.md":         "",
		"archive/people/Alice.md": "",
		"projects/plan.md":        "",
		"projects/Alice.md":       "",
		"assets/diagram.png":      "",
	})
	ctx := context.Background()

	tests := []struct {
		target string
		source string
		want   string
	}{
		{"plan", "index.md", "projects/plan.md"},
		{"Alice", "projects/plan.md", "projects/Alice.md"},
		{"Alice", "index.md", "people/Alice.md"},
		{"people/Alice.md", "index.md", "people/Alice.md"},
		{"diagram.png", "index.md", "assets/diagram.png"},
	}
	for _, tt := range tests {
		t.Run(tt.target+" from "+tt.source, func(t *testing.T) {
			entry, err := s.ResolveLink(ctx, tt.target, tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, entry.Path)
		})
	}

	_, err := s.ResolveLink(ctx, "Nobody", "index.md")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_Links(t *testing.T) {
	s := newTestVault(t, map[string]string{"a.md": "[[B]] [[C|see c]] [[B]]"})

	links, err := s.Links(context.Background(), "a.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, links)
}

func TestFileStore_ProcessFrontMatter(t *testing.T) {
	s := newTestVault(t, map[string]string{
		"with.md":    "---\ntitle: Old\nstatus: draft\n---\nBody text\n",
		"without.md": "Body only\n",
	})
	ctx := context.Background()

	err := s.ProcessFrontMatter(ctx, "with.md", func(fm *FrontMatter) error {
		if err := fm.Set("status", "done"); err != nil {
			return err
		}
		return fm.Set("tags", []interface{}{"a", "b"})
	})
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: Old\nstatus: done\ntags:\n  - a\n  - b\n---\nBody text\n", readRaw(t, s, "with.md"))

	err = s.ProcessFrontMatter(ctx, "without.md", func(fm *FrontMatter) error {
		return fm.Set("reviewed", true)
	})
	require.NoError(t, err)
	assert.Equal(t, "---\nreviewed: true\n---\nBody only\n", readRaw(t, s, "without.md"))

	err = s.ProcessFrontMatter(ctx, "missing.md", func(*FrontMatter) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}
