package vault

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

var (
	// [[target]], [[target|alias]], [[target#heading]], ![[embed]]
	wikiLinkRe = regexp.MustCompile(`(!?)\[\[([^\[\]|#^]*)(?:[#^][^\[\]|]*)?(?:\|[^\[\]]*)?\]\]`)

	// [text](target.md), [text](target.md#heading "title"), ![alt](image.png)
	mdLinkRe = regexp.MustCompile(`(!?)\[[^\]]*\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)

	fenceRe = regexp.MustCompile("(?s)```.*?```")
)

type linkMatch struct {
	pos    int
	target string
}

// ExtractLinks returns the unique link targets of a document in the order
// they first appear. Embeds, external URLs, self links and links inside
// fenced code blocks are skipped. Heading and block suffixes are dropped.
func ExtractLinks(content string) []string {
	content = fenceRe.ReplaceAllStringFunc(content, func(s string) string {
		return strings.Repeat(" ", len(s))
	})

	var matches []linkMatch
	for _, m := range wikiLinkRe.FindAllStringSubmatchIndex(content, -1) {
		if m[3] > m[2] {
			continue
		}
		matches = append(matches, linkMatch{pos: m[0], target: content[m[4]:m[5]]})
	}
	for _, m := range mdLinkRe.FindAllStringSubmatchIndex(content, -1) {
		if m[3] > m[2] {
			continue
		}
		if target, ok := markdownTarget(content[m[4]:m[5]]); ok {
			matches = append(matches, linkMatch{pos: m[0], target: target})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })

	seen := make(map[string]bool)
	var links []string
	for _, m := range matches {
		target := strings.TrimSpace(m.target)
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true
		links = append(links, target)
	}
	return links
}

func markdownTarget(raw string) (string, bool) {
	if strings.Contains(raw, "://") || strings.HasPrefix(raw, "mailto:") || strings.HasPrefix(raw, "#") {
		return "", false
	}
	if i := strings.IndexAny(raw, "#^"); i >= 0 {
		raw = raw[:i]
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw, true
	}
	return decoded, true
}
