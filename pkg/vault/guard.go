package vault

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Guard maps vault-relative paths to the filesystem and keeps every
// operation inside the vault root.
type Guard struct {
	root   string
	ignore []glob.Glob
}

// NewGuard creates a guard for root. Ignore patterns are globs over
// vault-relative paths where '*' stops at '/' and '**' does not.
func NewGuard(root string, ignore []string) (*Guard, error) {
	if root == "" {
		return nil, fmt.Errorf("vault directory cannot be empty")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vault directory: %w", err)
	}
	if eval, err := filepath.EvalSymlinks(abs); err == nil {
		abs = eval
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("vault directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault directory %s: %w", abs, ErrNotDirectory)
	}

	g := &Guard{root: abs}
	for _, pattern := range ignore {
		compiled, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		g.ignore = append(g.ignore, compiled)
	}
	return g, nil
}

// Root returns the absolute vault directory.
func (g *Guard) Root() string {
	return g.root
}

// Clean normalises a vault-relative path: backslashes become slashes,
// leading and trailing slashes are dropped and "." / ".." are resolved.
// Paths that climb above the root fail with ErrOutsideVault.
func (g *Guard) Clean(p string) (string, error) {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	p = strings.Trim(p, "/")
	if p == "" {
		return "", nil
	}

	cleaned := path.Clean(p)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%s: %w", p, ErrOutsideVault)
	}
	if cleaned == "." {
		return "", nil
	}
	return cleaned, nil
}

// Abs returns the filesystem path for a vault-relative path.
func (g *Guard) Abs(p string) (string, error) {
	rel, err := g.Clean(p)
	if err != nil {
		return "", err
	}
	if rel == "" {
		return g.root, nil
	}
	return filepath.Join(g.root, filepath.FromSlash(rel)), nil
}

// Rel returns the vault-relative path of an absolute filesystem path.
func (g *Guard) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(g.root, abs)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s: %w", abs, ErrOutsideVault)
	}
	if rel == "." {
		return "", nil
	}
	return rel, nil
}

// IsIgnored reports whether a vault-relative path matches an ignore pattern.
// A folder is ignored when "<folder>/" matches, so "dir/**" hides dir itself.
func (g *Guard) IsIgnored(rel string, isDir bool) bool {
	if rel == "" {
		return false
	}
	for _, pattern := range g.ignore {
		if pattern.Match(rel) || (isDir && pattern.Match(rel+"/")) {
			return true
		}
	}
	return false
}
