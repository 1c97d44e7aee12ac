package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/entrhq/vaultchat/pkg/agent/tools"
)

const (
	// MaxSearchResults caps how many documents a search returns.
	MaxSearchResults = 5

	excerptBefore = 100
	excerptAfter  = 300
)

// SearchVaultTool finds documents whose name or text contains a query.
type SearchVaultTool struct {
	ws Workspace
}

// NewSearchVaultTool creates a SearchVaultTool.
func NewSearchVaultTool(ws Workspace) *SearchVaultTool {
	return &SearchVaultTool{ws: ws}
}

// Name returns the tool name.
func (t *SearchVaultTool) Name() string {
	return "search_vault"
}

// Description returns the tool description.
func (t *SearchVaultTool) Description() string {
	return "Search the entire Obsidian vault for files matching a keyword query. Use this when the user asks about past files, vault contents, or broader knowledge outside the current note."
}

// Schema returns the JSON schema for the tool's input parameters.
func (t *SearchVaultTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "The keyword or phrase to search for.",
			},
		},
		[]string{"query"},
	)
}

// Execute scans documents newest first and stops after MaxSearchResults hits.
func (t *SearchVaultTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var input struct {
		Query string `json:"query"`
	}
	if err := tools.DecodeArguments(args, &input); err != nil {
		return "", nil, err
	}
	if strings.TrimSpace(input.Query) == "" {
		return "", nil, fmt.Errorf("%w: missing required parameter: query", tools.ErrInvalidArguments)
	}

	store := t.ws.Store()
	docs, err := store.ListMarkdown(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to list documents: %w", err)
	}
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].ModTime.After(docs[j].ModTime) })

	query := []rune(lowerRunes(input.Query))
	var results []string
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}

		content, err := store.CachedRead(ctx, doc.Path)
		if err != nil {
			continue
		}

		excerpt, ok := matchExcerpt([]rune(content), query, doc.Basename())
		if !ok {
			continue
		}
		results = append(results, fmt.Sprintf("--- File: [[%s]] ---\n...%s\n", doc.Basename(), excerpt))
		if len(results) >= MaxSearchResults {
			break
		}
	}

	metadata := map[string]interface{}{
		"query":   input.Query,
		"matches": len(results),
	}
	if len(results) == 0 {
		return fmt.Sprintf("No files found matching %q.", input.Query), metadata, nil
	}
	return fmt.Sprintf("Found %d files matching %q:\n\n", len(results), input.Query) + strings.Join(results, "\n\n"), metadata, nil
}

// matchExcerpt reports whether query (already lowered) occurs in the content
// or the basename. The excerpt spans excerptBefore runes before the first
// content match and up to excerptAfter runes from it; a name-only match
// yields the first excerptAfter runes.
func matchExcerpt(content, query []rune, basename string) (string, bool) {
	idx := indexRunes(lowerSlice(content), query)
	if idx < 0 && !strings.Contains(lowerRunes(basename), string(query)) {
		return "", false
	}

	start, end := 0, excerptAfter
	if idx >= 0 {
		start = max(0, idx-excerptBefore)
		end = idx + excerptAfter
	}
	end = min(end, len(content))
	return string(content[start:end]), true
}

// lowerSlice lowers rune by rune so indices line up with the original.
func lowerSlice(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func lowerRunes(s string) string {
	return string(lowerSlice([]rune(s)))
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 {
		return 0
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, r := range needle {
			if haystack[i+j] != r {
				continue outer
			}
		}
		return i
	}
	return -1
}
