package vault

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/entrhq/vaultchat/pkg/vault"
)

type testWorkspace struct {
	store  *vault.FileStore
	active string
}

func (w *testWorkspace) Store() vault.Store { return w.store }

func (w *testWorkspace) ActiveFile() (string, bool) {
	return w.active, w.active != ""
}

func newTestWorkspace(t *testing.T, files map[string]string) *testWorkspace {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		writeFile(t, dir, rel, content)
	}
	store, err := vault.NewFileStore(dir, []string{".obsidian/**"})
	require.NoError(t, err)
	return &testWorkspace{store: store}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o750))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
}

func touch(t *testing.T, ws *testWorkspace, rel string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(filepath.Join(ws.store.Root(), filepath.FromSlash(rel)), mod, mod))
}

func readFile(t *testing.T, ws *testWorkspace, rel string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(ws.store.Root(), filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(b)
}

func exists(ws *testWorkspace, rel string) bool {
	_, err := os.Stat(filepath.Join(ws.store.Root(), filepath.FromSlash(rel)))
	return err == nil
}

func args(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
