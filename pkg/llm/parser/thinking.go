// Package parser extracts structured parts from model output.
package parser

import (
	"strings"
)

var thinkingTags = []struct{ open, close string }{
	{"<thinking>", "</thinking>"},
	{"<think>", "</think>"},
}

// SplitThinking separates reasoning blocks wrapped in <thinking> or <think>
// tags from the answer text.
//
// Every complete block is removed from the answer and its inner text is
// collected, in order, into thinking (blocks joined by a blank line). An
// opening tag without a closing tag swallows the rest of the content as
// thinking. Text outside the tags is returned trimmed as the answer.
func SplitThinking(content string) (thinking, answer string) {
	if !strings.Contains(content, "<think") {
		return "", strings.TrimSpace(content)
	}

	var thoughts []string
	var out strings.Builder
	rest := content

	for {
		idx, tag := nextOpenTag(rest)
		if idx < 0 {
			out.WriteString(rest)
			break
		}

		out.WriteString(rest[:idx])
		rest = rest[idx+len(tag.open):]

		end := strings.Index(rest, tag.close)
		if end < 0 {
			thoughts = appendThought(thoughts, rest)
			break
		}
		thoughts = appendThought(thoughts, rest[:end])
		rest = rest[end+len(tag.close):]
	}

	return strings.Join(thoughts, "\n\n"), strings.TrimSpace(out.String())
}

func nextOpenTag(s string) (int, struct{ open, close string }) {
	best := -1
	var found struct{ open, close string }
	for _, tag := range thinkingTags {
		if i := strings.Index(s, tag.open); i >= 0 && (best < 0 || i < best) {
			best = i
			found = tag
		}
	}
	return best, found
}

func appendThought(thoughts []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		return append(thoughts, s)
	}
	return thoughts
}
