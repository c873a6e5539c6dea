package richtext

import (
	"bytes"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	mdOnce sync.Once
	md     goldmark.Markdown
)

func markdown() goldmark.Markdown {
	mdOnce.Do(func() {
		md = goldmark.New(goldmark.WithExtensions(extension.Strikethrough))
	})
	return md
}

// FromMarkdown converts markdown typed in the editor to sanitized block HTML.
// It is the inverse of ToMarkdown for the subset ToMarkdown produces.
func FromMarkdown(src string) (string, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdown().Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return Sanitize(strings.TrimSpace(buf.String())), nil
}
