package pboml

import (
	"fmt"
	stdhtml "html"
	"regexp"
	"strings"
	"time"
)

// renderSet renders one locale of one document. A fresh instance is built
// per locale so per-render state (generated host ids) never leaks across
// locales.
type renderSet struct {
	loc     Locale
	md      MarkdownConverter
	hostSeq int
}

func newRenderSet(loc Locale, md MarkdownConverter) *renderSet {
	return &renderSet{loc: loc, md: md}
}

// uiStrings are the fixed interface strings emitted around authored content.
var uiStrings = map[string]LocalizedString{
	"sources":      {LocaleEN: "Sources", LocaleFR: "Sources"},
	"notes":        {LocaleEN: "Notes", LocaleFR: "Notes"},
	"text_version": {LocaleEN: "Text version", LocaleFR: "Version texte"},
	"empty_cell":   {LocaleEN: "Empty cell", LocaleFR: "Cellule vide"},
	"note_number":  {LocaleEN: "Note #", LocaleFR: "Note no "},
	"skip_content": {LocaleEN: "Skip to main content", LocaleFR: "Passer au contenu principal"},
	"annotations":  {LocaleEN: "Notes", LocaleFR: "Notes"},
	"description":  {LocaleEN: "Description", LocaleFR: "Description"},
	"untitled":     {LocaleEN: "Untitled document", LocaleFR: "Document sans titre"},
}

func (r *renderSet) ui(key string) string {
	return uiStrings[key].Get(r.loc)
}

func escapeHTML(s string) string { return stdhtml.EscapeString(s) }

// ---------------------------------------------------------------------------
// Document rendering
// ---------------------------------------------------------------------------

// renderDocument produces the main content fragment for one locale: header,
// every slice in document order, the notes section, and the footer.
func (r *renderSet) renderDocument(doc *Document) (string, error) {
	var b strings.Builder

	b.WriteString(`<article class="pboml-document">`)
	b.WriteString("\n")
	r.renderHeader(&b, doc.Metadata)

	for _, slice := range doc.Slices {
		rendered, err := r.renderSlice(slice)
		if err != nil {
			attrs := slice.Attrs()
			return "", &RenderError{SliceType: slice.Kind(), SliceID: attrs.ID, Err: err}
		}
		b.WriteString(rendered)
		b.WriteString("\n")
	}

	if len(doc.Annotations) > 0 {
		annotations, err := r.renderAnnotations(doc.Annotations)
		if err != nil {
			return "", err
		}
		b.WriteString(annotations)
		b.WriteString("\n")
	}

	r.renderFooter(&b, doc.Metadata)
	b.WriteString(`</article>`)

	return b.String(), nil
}

// renderSlice dispatches on the slice variant. The type switch is exhaustive
// over the closed set.
func (r *renderSet) renderSlice(slice Slice) (string, error) {
	switch s := slice.(type) {
	case *MarkdownSlice:
		return r.renderMarkdown(s)
	case *HeadingSlice:
		return r.renderHeading(s)
	case *TableSlice:
		return r.renderTable(s)
	case *ChartSlice:
		return r.renderChart(s)
	case *SVGSlice:
		return r.renderSVG(s)
	case *BitmapSlice:
		return r.renderBitmap(s)
	case *KVListSlice:
		return r.renderKVList(s)
	case *HTMLSlice:
		return r.renderHTML(s)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedSliceType, slice.Kind())
	}
}

// sliceSection wraps rendered slice content in its labeled section
// container, applying the presentation mode and appending any sources and
// notes blocks.
func (r *renderSet) sliceSection(attrs *SliceAttrs, kind SliceKind, content string) string {
	var b strings.Builder

	b.WriteString(`<section class="pboml-slice pboml-slice-`)
	b.WriteString(string(kind))
	b.WriteByte('"')
	if attrs.ID != "" {
		fmt.Fprintf(&b, ` id=%q`, attrs.ID)
	}
	b.WriteByte('>')

	caption := r.sliceLabelLine(attrs)

	switch attrs.Presentation {
	case PresentationFigure:
		b.WriteString(`<figure>`)
		b.WriteString(content)
		if caption != "" {
			b.WriteString(`<figcaption>`)
			b.WriteString(caption)
			b.WriteString(`</figcaption>`)
		}
		b.WriteString(`</figure>`)
	case PresentationAside:
		b.WriteString(`<aside>`)
		if caption != "" {
			b.WriteString(`<h2 class="pboml-slice-label">`)
			b.WriteString(caption)
			b.WriteString(`</h2>`)
		}
		b.WriteString(content)
		b.WriteString(`</aside>`)
	default:
		if caption != "" {
			b.WriteString(`<h2 class="pboml-slice-label">`)
			b.WriteString(caption)
			b.WriteString(`</h2>`)
		}
		b.WriteString(content)
	}

	b.WriteString(r.localizedBlock("sources", attrs.Sources))
	b.WriteString(r.localizedBlock("notes", attrs.Notes))
	b.WriteString(`</section>`)

	return b.String()
}

// sliceLabelLine joins referenced_as and label into the visible heading line
// of a slice, when labeling is enabled.
func (r *renderSet) sliceLabelLine(attrs *SliceAttrs) string {
	if !attrs.DisplayLabel {
		return ""
	}
	label := attrs.Label.Get(r.loc)
	ref := attrs.ReferencedAs.Get(r.loc)
	switch {
	case ref != "" && label != "":
		return fmt.Sprintf(`<span class="pboml-slice-ref">%s</span> - <span>%s</span>`,
			escapeHTML(ref), escapeHTML(label))
	case label != "":
		return `<span>` + escapeHTML(label) + `</span>`
	case ref != "":
		return `<span class="pboml-slice-ref">` + escapeHTML(ref) + `</span>`
	default:
		return ""
	}
}

// localizedBlock renders a titled definition list of localized entries, used
// for the Sources and Notes blocks under a slice.
func (r *renderSet) localizedBlock(key string, entries []LocalizedString) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<dl class="pboml-`)
	b.WriteString(key)
	b.WriteString(`"><dt>`)
	b.WriteString(r.ui(key))
	b.WriteString(`</dt>`)
	for _, entry := range entries {
		text := entry.Get(r.loc)
		rendered, err := convertInline(r.md, text)
		if err != nil {
			rendered = escapeHTML(text)
		}
		b.WriteString(`<dd>`)
		b.WriteString(rendered)
		b.WriteString(`</dd>`)
	}
	b.WriteString(`</dl>`)
	return b.String()
}

// ---------------------------------------------------------------------------
// Header, footer, annotations
// ---------------------------------------------------------------------------

func (r *renderSet) renderHeader(b *strings.Builder, meta *Metadata) {
	b.WriteString(`<header class="pboml-header">`)
	if meta != nil {
		if docType := meta.Type.Get(r.loc); docType != "" {
			b.WriteString(`<p class="pboml-doc-type">` + escapeHTML(docType) + `</p>`)
		}
		title := meta.Title.Get(r.loc)
		if title == "" {
			title = r.ui("untitled")
		}
		b.WriteString(`<h1>` + escapeHTML(title) + `</h1>`)
		if !meta.ReleaseDate.IsZero() {
			fmt.Fprintf(b, `<time datetime=%q>%s</time>`,
				meta.ReleaseDate.Format("2006-01-02"), formatLongDate(meta.ReleaseDate, r.loc))
		}
	} else {
		b.WriteString(`<h1>` + r.ui("untitled") + `</h1>`)
	}
	b.WriteString(`</header>`)
	b.WriteString("\n")
}

func (r *renderSet) renderFooter(b *strings.Builder, meta *Metadata) {
	b.WriteString(`<footer class="pboml-footer"><p>`)
	if meta != nil {
		parts := make([]string, 0, 2)
		if c := meta.Copyright.Get(r.loc); c != "" {
			parts = append(parts, escapeHTML(c))
		}
		if meta.ID != "" {
			parts = append(parts, escapeHTML(meta.ID))
		}
		b.WriteString(strings.Join(parts, " &bull; "))
	}
	b.WriteString(`</p></footer>`)
}

// renderAnnotations builds the notes aside: an ordered list where entry N
// carries id antn_N plus the annotation-N anchor the reference markers
// target.
func (r *renderSet) renderAnnotations(annotations []Annotation) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, `<aside role="note" aria-label=%q class="pboml-annotations"><h2>%s</h2><ol>`,
		r.ui("annotations"), r.ui("annotations"))

	for _, a := range annotations {
		body, err := r.renderAnnotationBody(a)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, `<li id="antn_%s"><span id="annotation-%s" class="sr-only">%s%s</span>%s</li>`,
			a.ID, a.ID, r.ui("note_number"), a.ID, body)
	}

	b.WriteString(`</ol></aside>`)
	return b.String(), nil
}

func (r *renderSet) renderAnnotationBody(a Annotation) (string, error) {
	content := a.Content.Get(r.loc)
	if a.ContentType == AnnotationBibtex {
		return formatBibtexCitation(content), nil
	}
	rendered, err := r.md.Convert(normalizeMarkdown(content))
	if err != nil {
		return "", &RenderError{SliceType: "annotation", SliceID: a.ID, Err: err}
	}
	return applyTableAlignments(rendered, content), nil
}

// ---------------------------------------------------------------------------
// Bibtex citation formatting
// ---------------------------------------------------------------------------

var bibtexFieldPattern = regexp.MustCompile(`(?im)^\s*(\w+)\s*=\s*[{"]([^}"]*)[}"]`)

// formatBibtexCitation extracts the common fields of a bibtex entry and
// renders them as a plain citation line.
func formatBibtexCitation(entry string) string {
	fields := map[string]string{}
	for _, m := range bibtexFieldPattern.FindAllStringSubmatch(entry, -1) {
		fields[strings.ToLower(m[1])] = m[2]
	}

	parts := make([]string, 0, 4)
	if author := fields["author"]; author != "" {
		parts = append(parts, escapeHTML(author))
	}
	if year := fields["year"]; year != "" {
		parts = append(parts, "("+escapeHTML(year)+")")
	}
	if title := fields["title"]; title != "" {
		parts = append(parts, `<cite>`+escapeHTML(title)+`</cite>`)
	}
	if journal := fields["journal"]; journal != "" {
		parts = append(parts, `<em>`+escapeHTML(journal)+`</em>`)
	}
	if len(parts) == 0 {
		return `<pre class="pboml-bibtex">` + escapeHTML(entry) + `</pre>`
	}
	return `<span class="pboml-citation">` + strings.Join(parts, ". ") + `</span>`
}

// ---------------------------------------------------------------------------
// Markdown table alignment
// ---------------------------------------------------------------------------

var delimiterRowPattern = regexp.MustCompile(`(?m)^\s*\|?\s*:?-+:?\s*(\|\s*:?-+:?\s*)+\|?\s*$`)

// applyTableAlignments derives per-column alignment from a GFM delimiter row
// and stamps align attributes onto the rendered table cells. Goldmark
// already emits style attributes for alignment; this adds the plain align
// attribute legacy consumers expect.
func applyTableAlignments(rendered, source string) string {
	row := delimiterRowPattern.FindString(source)
	if row == "" {
		return rendered
	}
	aligns := parseDelimiterRow(row)
	if len(aligns) == 0 {
		return rendered
	}

	for _, align := range aligns {
		if align == "" {
			continue
		}
		styled := fmt.Sprintf(`style="text-align:%s"`, align)
		rendered = strings.ReplaceAll(rendered, styled, styled+fmt.Sprintf(` align=%q`, align))
	}
	return rendered
}

func parseDelimiterRow(row string) []string {
	row = strings.Trim(strings.TrimSpace(row), "|")
	cols := strings.Split(row, "|")
	aligns := make([]string, len(cols))
	for i, col := range cols {
		col = strings.TrimSpace(col)
		left := strings.HasPrefix(col, ":")
		right := strings.HasSuffix(col, ":")
		switch {
		case left && right:
			aligns[i] = "center"
		case right:
			aligns[i] = "right"
		case left:
			aligns[i] = "left"
		}
	}
	return aligns
}

// ---------------------------------------------------------------------------
// Dates
// ---------------------------------------------------------------------------

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// formatLongDate renders a long-format date: "January 2, 2006" in English,
// "2 janvier 2006" in French.
func formatLongDate(t time.Time, loc Locale) string {
	if loc == LocaleFR {
		return fmt.Sprintf("%d %s %d", t.Day(), frenchMonths[t.Month()-1], t.Year())
	}
	return t.Format("January 2, 2006")
}
