package vault

import (
	"strings"

	"github.com/entrhq/vaultchat/pkg/vault"
)

// Workspace is what the actions need from the host.
type Workspace interface {
	Store() vault.Store
	ActiveFile() (string, bool)
}

// NormalizeNotePath appends ".md" when missing and drops a leading "/".
func NormalizeNotePath(p string) string {
	p = strings.TrimSpace(p)
	if !strings.HasSuffix(p, vault.MarkdownExt) {
		p += vault.MarkdownExt
	}
	return strings.TrimPrefix(p, "/")
}

// NormalizeDirPath drops one leading and one trailing "/". The empty string
// is the vault root.
func NormalizeDirPath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimPrefix(p, "/")
	return strings.TrimSuffix(p, "/")
}

// displayDir renders the root as "/".
func displayDir(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
