package vault

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

// FrontMatter is the YAML property block at the top of a document. Key order
// is preserved across edits.
type FrontMatter struct {
	node *yaml.Node
}

// NewFrontMatter returns an empty property block.
func NewFrontMatter() *FrontMatter {
	return &FrontMatter{node: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

// SplitFrontMatter separates a document into its front matter and body.
// Documents without a block yield an empty FrontMatter, the whole content as
// body and found=false.
func SplitFrontMatter(content string) (fm *FrontMatter, body string, found bool, err error) {
	yamlBlock, body, found := cutFrontMatter(content)
	if !found {
		return NewFrontMatter(), content, false, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(yamlBlock), &doc); err != nil {
		return nil, "", true, fmt.Errorf("front matter parse error: %w", err)
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		return NewFrontMatter(), body, true, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, "", true, fmt.Errorf("front matter is not a mapping")
	}
	return &FrontMatter{node: root}, body, true, nil
}

// cutFrontMatter finds a block that opens on the first line and closes on a
// line holding only the delimiter.
func cutFrontMatter(content string) (yamlBlock, body string, found bool) {
	first, rest, ok := strings.Cut(content, "\n")
	if !ok || strings.TrimRight(first, "\r ") != frontMatterDelimiter {
		return "", content, false
	}

	offset := 0
	for {
		line, after, more := strings.Cut(rest[offset:], "\n")
		if strings.TrimRight(line, "\r ") == frontMatterDelimiter {
			return rest[:offset], after, true
		}
		if !more {
			return "", content, false
		}
		offset += len(line) + 1
	}
}

// Keys returns the property names in document order.
func (fm *FrontMatter) Keys() []string {
	keys := make([]string, 0, len(fm.node.Content)/2)
	for i := 0; i+1 < len(fm.node.Content); i += 2 {
		keys = append(keys, fm.node.Content[i].Value)
	}
	return keys
}

// Len returns the number of properties.
func (fm *FrontMatter) Len() int {
	return len(fm.node.Content) / 2
}

// Get decodes a property value.
func (fm *FrontMatter) Get(key string) (interface{}, bool) {
	for i := 0; i+1 < len(fm.node.Content); i += 2 {
		if fm.node.Content[i].Value == key {
			var v interface{}
			if err := fm.node.Content[i+1].Decode(&v); err != nil {
				return nil, false
			}
			return v, true
		}
	}
	return nil, false
}

// Set overwrites key in place or appends it at the end.
func (fm *FrontMatter) Set(key string, value interface{}) error {
	var v yaml.Node
	if err := v.Encode(normalizeValue(value)); err != nil {
		return fmt.Errorf("property %s: %w", key, err)
	}

	for i := 0; i+1 < len(fm.node.Content); i += 2 {
		if fm.node.Content[i].Value == key {
			fm.node.Content[i+1] = &v
			return nil
		}
	}

	fm.node.Content = append(fm.node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&v,
	)
	return nil
}

// normalizeValue turns whole JSON numbers into integers so 3 is not written as 3.0.
func normalizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return int64(v)
		}
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	}
	return value
}

// Render writes the block followed by body.
func (fm *FrontMatter) Render(body string) (string, error) {
	var sb strings.Builder
	sb.WriteString(frontMatterDelimiter + "\n")

	if fm.Len() > 0 {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(fm.node); err != nil {
			return "", fmt.Errorf("front matter serialize error: %w", err)
		}
		if err := enc.Close(); err != nil {
			return "", fmt.Errorf("front matter serialize error: %w", err)
		}
		sb.Write(buf.Bytes())
	}

	sb.WriteString(frontMatterDelimiter + "\n")
	sb.WriteString(body)
	return sb.String(), nil
}
