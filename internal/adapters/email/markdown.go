package email

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// md renders message bodies. Raw HTML in the markdown is escaped
// (WithUnsafe is not set).
var md = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// RenderMarkdown converts a markdown body to the HTML sent to providers.
// PRE: body is markdown text
// POST: Returns an HTML fragment wrapped in a minimal document
func RenderMarkdown(body string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return `<!doctype html><html><body style="font-family:sans-serif;line-height:1.5">` +
		buf.String() + `</body></html>`, nil
}
