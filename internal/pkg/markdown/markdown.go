package markdown

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

var engine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
		htmlrenderer.WithXHTML(),
	),
)

var ugc = bluemonday.UGCPolicy()

// Render converts Markdown to sanitised HTML.
func Render(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := engine.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(ugc.Sanitize(buf.String())), nil
}

// Sanitize strips unsafe markup from HTML fragments.
func Sanitize(html string) string {
	return ugc.Sanitize(html)
}
