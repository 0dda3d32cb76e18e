package pboml

import (
	"fmt"
	"regexp"
	"strings"
)

// ---------------------------------------------------------------------------
// Markdown slices
// ---------------------------------------------------------------------------

func (r *renderSet) renderMarkdown(s *MarkdownSlice) (string, error) {
	converted, err := r.md.Convert(normalizeMarkdown(s.Content.Get(r.loc)))
	if err != nil {
		return "", err
	}
	return r.sliceSection(&s.SliceAttrs, KindMarkdown, converted), nil
}

// ---------------------------------------------------------------------------
// Heading slices
// ---------------------------------------------------------------------------

// headingTags maps the four authored levels onto heading elements. Level 0
// is h2: h1 is reserved for the document title.
var headingTags = [...]string{"h2", "h3", "h4", "h5"}

var nonAlphanumericRun = regexp.MustCompile(`[^a-z0-9]+`)

// headingAnchorID derives a stable anchor id from heading text.
func headingAnchorID(text string) string {
	id := nonAlphanumericRun.ReplaceAllString(strings.ToLower(text), "-")
	return "heading-" + strings.Trim(id, "-")
}

func (r *renderSet) renderHeading(s *HeadingSlice) (string, error) {
	if s.Level < 0 || s.Level >= len(headingTags) {
		return "", fmt.Errorf("heading level %d out of range", s.Level)
	}
	tag := headingTags[s.Level]
	text := s.Content.Get(r.loc)

	var b strings.Builder
	fmt.Fprintf(&b, `<%s id=%q class="pboml-heading pboml-heading-%d">`, tag, headingAnchorID(text), s.Level)

	// An en-dash separator splits the heading into independently styled
	// segments.
	segments := strings.Split(text, " – ")
	if len(segments) > 1 {
		for i, seg := range segments {
			if i > 0 {
				b.WriteString(` <span aria-hidden="true">&ndash;</span> `)
			}
			fmt.Fprintf(&b, `<span class="pboml-heading-segment">%s</span>`, escapeHTML(seg))
		}
	} else {
		b.WriteString(escapeHTML(text))
	}

	fmt.Fprintf(&b, `</%s>`, tag)

	attrs := s.SliceAttrs
	attrs.DisplayLabel = false // heading content is its own label
	return r.sliceSection(&attrs, KindHeading, b.String()), nil
}

// ---------------------------------------------------------------------------
// Key/value list slices
// ---------------------------------------------------------------------------

func (r *renderSet) renderKVList(s *KVListSlice) (string, error) {
	var b strings.Builder

	b.WriteString(`<ul class="pboml-kvlist" role="list">`)
	for _, row := range s.Rows {
		key, err := r.kvCell(s.Prototype.Key.Type, row.Key)
		if err != nil {
			return "", err
		}

		values := make([]string, 0, len(row.Values))
		for _, v := range row.Values {
			rendered, err := r.kvCell(s.Prototype.Value.Type, v)
			if err != nil {
				return "", err
			}
			values = append(values, rendered)
		}

		b.WriteString(`<li class="pboml-kvlist-item"><span class="pboml-kvlist-key">`)
		b.WriteString(key)
		b.WriteString(`</span><span aria-hidden="true" class="pboml-kvlist-sep">&bull;</span><span class="pboml-kvlist-value">`)
		b.WriteString(strings.Join(values, "<br/>"))
		b.WriteString(`</span></li>`)
	}
	b.WriteString(`</ul>`)

	return r.sliceSection(&s.SliceAttrs, KindKVList, b.String()), nil
}

// kvCell formats one side of a pair per the declared prototype type.
func (r *renderSet) kvCell(typ CellType, content LocalizedString) (string, error) {
	text := content.Get(r.loc)
	switch typ {
	case CellNumber:
		var n float64
		if _, err := fmt.Sscanf(text, "%g", &n); err == nil {
			return formatKVNumber(n), nil
		}
		return escapeHTML(text), nil
	case CellMarkdown:
		return convertInline(r.md, text)
	default:
		return escapeHTML(text), nil
	}
}

// ---------------------------------------------------------------------------
// HTML slices
// ---------------------------------------------------------------------------

// defaultHostStyles is the base style sheet injected into each html slice's
// shadow root unless the author opts out.
const defaultHostStyles = `:host { display: block; font-family: inherit; line-height: 1.5; }
* { box-sizing: border-box; }
img { max-width: 100%; height: auto; }`

// renderHTML hosts the sanitized markup inside a declarative shadow root so
// author styles cannot leak into the surrounding page.
func (r *renderSet) renderHTML(s *HTMLSlice) (string, error) {
	r.hostSeq++
	hostID := fmt.Sprintf("pboml-html-host-%d", r.hostSeq)

	var b strings.Builder
	fmt.Fprintf(&b, `<div id=%q class="pboml-html-host"><template shadowrootmode="open">`, hostID)

	var styles []string
	if !s.RemoveDefaultStyles {
		styles = append(styles, defaultHostStyles)
	}
	if s.CSS != "" {
		styles = append(styles, s.CSS)
	}
	if len(styles) > 0 {
		b.WriteString(`<style>`)
		b.WriteString(strings.Join(styles, "\n"))
		b.WriteString(`</style>`)
	}

	b.WriteString(s.Content.Get(r.loc))
	b.WriteString(`</template></div>`)

	return r.sliceSection(&s.SliceAttrs, KindHTML, b.String()), nil
}
