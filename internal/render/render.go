// Package render turns review document bodies into HTML for the detail page.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"

	"github.com/codigovinario/vinario/internal/review"
)

// Raw HTML and MDX component tags are left out of the output (goldmark's
// default).
var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithXHTML(),
	),
)

// Markdown converts a document body to HTML.
func Markdown(body string) (template.HTML, error) {
	text := strings.TrimSpace(body)
	if text == "" {
		return "", nil
	}
	var out bytes.Buffer
	if err := markdownEngine.Convert([]byte(text), &out); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return template.HTML(out.String()), nil
}

// BylineSeparator joins the parts of a byline.
const BylineSeparator = " · "

// Byline is the "winery · varietal · region" line shown under a title, with
// absent parts left out.
func Byline(s review.Summary) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{s.Winery, s.Varietal, s.Region} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, BylineSeparator)
}

// Score formats a rating without trailing zeros: 90 → "90", 91.5 → "91.5".
// Unscored reviews render as "".
func Score(s review.Summary) string {
	if s.Score == nil {
		return ""
	}
	return strconv.FormatFloat(*s.Score, 'f', -1, 64)
}
