package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestVault writes files (vault-relative path → content) into a temp dir.
func newTestVault(t *testing.T, files map[string]string) *FileStore {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o750))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
	store, err := NewFileStore(dir, []string{".obsidian/**"})
	require.NoError(t, err)
	return store
}

func readRaw(t *testing.T, s *FileStore, rel string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(s.Root(), filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(b)
}
