package pboml

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
)

// MarkdownConverter abstracts the markdown engine. The default supports GFM
// tables, footnotes, and fenced-code highlighting; unsafe raw links stay
// escaped.
type MarkdownConverter interface {
	Convert(markdown string) (string, error)
}

// goldmarkConverter is the default MarkdownConverter.
type goldmarkConverter struct {
	md goldmark.Markdown
}

func newGoldmarkConverter() *goldmarkConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true), // CSS classes, no inline styles
				),
			),
		),
	)
	return &goldmarkConverter{md: md}
}

func (c *goldmarkConverter) Convert(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("markdown conversion: %w", err)
	}
	return buf.String(), nil
}

var singleParagraphPattern = regexp.MustCompile(`(?s)^<p>(.*)</p>\s*$`)

// convertInline converts markdown intended for a table or kvlist cell,
// unwrapping the enclosing paragraph so the result nests inside the cell.
func convertInline(md MarkdownConverter, markdown string) (string, error) {
	converted, err := md.Convert(markdown)
	if err != nil {
		return "", err
	}
	converted = strings.TrimSpace(converted)
	if m := singleParagraphPattern.FindStringSubmatch(converted); m != nil && !strings.Contains(m[1], "<p>") {
		return m[1], nil
	}
	return converted, nil
}

var (
	midParagraphNewline = regexp.MustCompile(`([^\n])\n([^\n])`)
	excessBlankLines    = regexp.MustCompile(`\n{3,}`)
)

// normalizeMarkdown collapses single newlines to spaces and runs of blank
// lines to exactly one blank line. Authors hard-wrap YAML block scalars;
// those wraps are layout, not paragraph breaks.
func normalizeMarkdown(markdown string) string {
	markdown = midParagraphNewline.ReplaceAllString(markdown, "$1 $2")
	markdown = excessBlankLines.ReplaceAllString(markdown, "\n\n")
	return markdown
}
