package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLinks(t *testing.T) {
	content := "See [[Alpha]] and [[Beta|the beta note]].\n" +
		"Jump to [[Gamma#Heading]] or [[Alpha]] again.\n" +
		"Markdown [delta](Folder/Delta%20Note.md) and [web](https://example.com).\n" +
		"Embeds ![[image.png]] and ![pic](pic.png) are not links.\n" +
		"Self [[#Local heading]] is skipped.\n" +
		"```\n[[InCode]]\n```\n" +
		"Block ref [[Epsilon^abc123]]."

	assert.Equal(t, []string{"Alpha", "Beta", "Gamma", "Folder/Delta Note.md", "Epsilon"}, ExtractLinks(content))
}

func TestExtractLinks_None(t *testing.T) {
	assert.Empty(t, ExtractLinks("plain text with [brackets] and (parens)"))
}
