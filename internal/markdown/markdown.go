// Package markdown converts assistant output to HTML with fenced code
// blocks and tables honored.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var renderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// ToHTML renders markdown source to HTML. On renderer failure the raw
// text is returned so the caller always has something to display.
func ToHTML(source string) string {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(source), &buf); err != nil {
		return source
	}
	return buf.String()
}
