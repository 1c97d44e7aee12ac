package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/vaultchat/pkg/logging"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("vault")
	if err != nil {
		debugLog.Warnf("vault logging fell back to stderr: %v", err)
	}
}

type cacheEntry struct {
	modTime time.Time
	size    int64
	content string
}

// FileStore is a Store over a local directory.
// It is safe for concurrent use.
type FileStore struct {
	guard *Guard

	mu    sync.Mutex // guards cache and serialises writes
	cache map[string]cacheEntry
}

// NewFileStore opens the vault at dir. Ignore patterns are globs over
// vault-relative paths.
func NewFileStore(dir string, ignore []string) (*FileStore, error) {
	guard, err := NewGuard(dir, ignore)
	if err != nil {
		return nil, err
	}
	return &FileStore{guard: guard, cache: make(map[string]cacheEntry)}, nil
}

// Root returns the absolute vault directory.
func (s *FileStore) Root() string {
	return s.guard.Root()
}

// Stat describes the file or folder at p.
func (s *FileStore) Stat(ctx context.Context, p string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	rel, err := s.guard.Clean(p)
	if err != nil {
		return Entry{}, err
	}
	abs, _ := s.guard.Abs(rel)

	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return Entry{}, fmt.Errorf("%s: %w", rel, ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("stat %s: %w", rel, err)
	}
	return entryFor(rel, info), nil
}

// Read returns the full text of a markdown document.
func (s *FileStore) Read(ctx context.Context, p string) (string, error) {
	entry, abs, err := s.document(ctx, p)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", entry.Path, err)
	}
	return string(b), nil
}

// CachedRead returns the document text, re-reading only when the file's
// modification time or size changed since the last read.
func (s *FileStore) CachedRead(ctx context.Context, p string) (string, error) {
	entry, abs, err := s.document(ctx, p)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	cached, ok := s.cache[entry.Path]
	s.mu.Unlock()
	if ok && cached.modTime.Equal(entry.ModTime) && cached.size == entry.Size {
		return cached.content, nil
	}

	b, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", entry.Path, err)
	}

	s.mu.Lock()
	s.cache[entry.Path] = cacheEntry{modTime: entry.ModTime, size: entry.Size, content: string(b)}
	s.mu.Unlock()
	return string(b), nil
}

// ListMarkdown returns every non-ignored markdown document, sorted by path.
func (s *FileStore) ListMarkdown(ctx context.Context) ([]Entry, error) {
	return s.WalkMarkdown(ctx, "")
}

// WalkMarkdown returns the markdown documents under dir, sorted by path.
func (s *FileStore) WalkMarkdown(ctx context.Context, dir string) ([]Entry, error) {
	root, err := s.Stat(ctx, dir)
	if err != nil {
		return nil, err
	}
	if !root.IsDir {
		return nil, fmt.Errorf("%s: %w", root.Path, ErrNotDirectory)
	}
	abs, _ := s.guard.Abs(root.Path)

	var out []Entry
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			debugLog.Warnf("skipping %s: %v", p, walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, err := s.guard.Rel(p)
		if err != nil {
			return nil
		}
		if s.guard.IsIgnored(rel, d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if entry := entryFor(rel, info); entry.IsMarkdown() {
			out = append(out, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// ListDir returns the direct, non-ignored children of dir, folders first.
func (s *FileStore) ListDir(ctx context.Context, dir string) ([]Entry, error) {
	root, err := s.Stat(ctx, dir)
	if err != nil {
		return nil, err
	}
	if !root.IsDir {
		return nil, fmt.Errorf("%s: %w", root.Path, ErrNotDirectory)
	}
	abs, _ := s.guard.Abs(root.Path)

	dirEntries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", root.Path, err)
	}

	var out []Entry
	for _, d := range dirEntries {
		rel := path.Join(root.Path, d.Name())
		if s.guard.IsIgnored(rel, d.IsDir()) {
			continue
		}
		info, err := d.Info()
		if err != nil {
			continue
		}
		out = append(out, entryFor(rel, info))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsDir != out[j].IsDir {
			return out[i].IsDir
		}
		return out[i].Path < out[j].Path
	})
	return out, nil
}

// Create writes a new document. Parent folders are created as needed.
func (s *FileStore) Create(ctx context.Context, p, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rel, err := s.guard.Clean(p)
	if err != nil {
		return err
	}
	if rel == "" {
		return fmt.Errorf("%s: %w", p, ErrAlreadyExists)
	}
	abs, _ := s.guard.Abs(rel)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Lstat(abs); err == nil {
		return fmt.Errorf("%s: %w", rel, ErrAlreadyExists)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
		return fmt.Errorf("create folders for %s: %w", rel, err)
	}

	f, err := os.OpenFile(abs, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s: %w", rel, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("create %s: %w", rel, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", rel, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", rel, err)
	}

	debugLog.Infof("created %s (%d bytes)", rel, len(content))
	return nil
}

// Append adds content to the end of an existing markdown document.
func (s *FileStore) Append(ctx context.Context, p, content string) error {
	entry, abs, err := s.document(ctx, p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, entry.Path)

	f, err := os.OpenFile(abs, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", entry.Path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("append %s: %w", entry.Path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", entry.Path, err)
	}

	debugLog.Infof("appended %d bytes to %s", len(content), entry.Path)
	return nil
}

// Links returns the link targets of a document.
func (s *FileStore) Links(ctx context.Context, p string) ([]string, error) {
	content, err := s.CachedRead(ctx, p)
	if err != nil {
		return nil, err
	}
	return ExtractLinks(content), nil
}

// ResolveLink finds the file a link target points to. Targets without an
// extension refer to markdown documents. Resolution tries, in order, the
// path relative to the source's folder, the path from the vault root, and
// finally any file whose path ends with the target, preferring the shortest.
func (s *FileStore) ResolveLink(ctx context.Context, target, source string) (Entry, error) {
	target = strings.TrimSpace(strings.ReplaceAll(target, "\\", "/"))
	if target == "" {
		return Entry{}, fmt.Errorf("empty link: %w", ErrNotFound)
	}
	if path.Ext(target) == "" {
		target += MarkdownExt
	}

	candidates := []string{path.Join(path.Dir(source), target), target}
	for _, c := range candidates {
		entry, err := s.Stat(ctx, c)
		if err == nil && !entry.IsDir {
			return entry, nil
		}
	}

	rel, err := s.guard.Clean(target)
	if err != nil {
		return Entry{}, err
	}
	var best *Entry
	err = filepath.WalkDir(s.guard.Root(), func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		r, err := s.guard.Rel(p)
		if err != nil || !(r == rel || strings.HasSuffix(r, "/"+rel)) {
			return nil
		}
		if best == nil || len(r) < len(best.Path) {
			info, err := d.Info()
			if err != nil {
				return nil
			}
			e := entryFor(r, info)
			best = &e
		}
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	if best == nil {
		return Entry{}, fmt.Errorf("link %s: %w", target, ErrNotFound)
	}
	return *best, nil
}

// ProcessFrontMatter edits the front matter of a document and rewrites it
// atomically. A document without a block gains one at the top.
func (s *FileStore) ProcessFrontMatter(ctx context.Context, p string, fn func(*FrontMatter) error) error {
	entry, abs, err := s.document(ctx, p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, entry.Path)

	raw, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("read %s: %w", entry.Path, err)
	}

	fm, body, _, err := SplitFrontMatter(string(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", entry.Path, err)
	}
	if err := fn(fm); err != nil {
		return err
	}

	out, err := fm.Render(body)
	if err != nil {
		return fmt.Errorf("%s: %w", entry.Path, err)
	}
	if err := writeFileAtomic(abs, []byte(out)); err != nil {
		return fmt.Errorf("%s: %w", entry.Path, err)
	}

	debugLog.Infof("updated front matter of %s (%d properties)", entry.Path, fm.Len())
	return nil
}

// document resolves p to an existing markdown file.
func (s *FileStore) document(ctx context.Context, p string) (Entry, string, error) {
	entry, err := s.Stat(ctx, p)
	if err != nil {
		return Entry{}, "", err
	}
	if !entry.IsMarkdown() {
		return Entry{}, "", fmt.Errorf("%s: %w", entry.Path, ErrNotDocument)
	}
	abs, _ := s.guard.Abs(entry.Path)
	return entry, abs, nil
}

func entryFor(rel string, info fs.FileInfo) Entry {
	return Entry{
		Path:    rel,
		IsDir:   info.IsDir(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, mode); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}
