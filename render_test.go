package pboml

import (
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestRenderHeading - Level mapping, anchors, segment splitting
// ---------------------------------------------------------------------------

func TestRenderHeading(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		level        int
		content      string
		wantContains []string
	}{
		{
			name:    "level 0 renders top heading tag",
			level:   0,
			content: "Introduction",
			wantContains: []string{
				`<h2 id="heading-introduction"`,
				"</h2>",
			},
		},
		{
			name:    "level 3 renders lowest heading tag",
			level:   3,
			content: "Fine print",
			wantContains: []string{
				`<h5 id="heading-fine-print"`,
				"</h5>",
			},
		},
		{
			name:    "anchor id strips non-alphanumerics",
			level:   1,
			content: "Fiscal Outlook: 2024/25",
			wantContains: []string{
				`id="heading-fiscal-outlook-2024-25"`,
			},
		},
		{
			name:    "en-dash splits into styled segments",
			level:   0,
			content: "Chapter 1 – Revenue",
			wantContains: []string{
				`<span class="pboml-heading-segment">Chapter 1</span>`,
				`<span class="pboml-heading-segment">Revenue</span>`,
				`<span aria-hidden="true">&ndash;</span>`,
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			slice := &HeadingSlice{
				SliceAttrs: SliceAttrs{DisplayLabel: true},
				Content:    LocalizedString{LocaleEN: tt.content, LocaleFR: tt.content},
				Level:      tt.level,
			}
			out, err := testRenderSet(LocaleEN).renderHeading(slice)
			if err != nil {
				t.Fatalf("renderHeading() unexpected error: %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(out, want) {
					t.Errorf("output %q does not contain %q", out, want)
				}
			}
		})
	}
}

func TestRenderHeading_LevelOutOfRange(t *testing.T) {
	t.Parallel()

	slice := &HeadingSlice{
		Content: uniformLocalized("Deep"),
		Level:   4,
	}
	if _, err := testRenderSet(LocaleEN).renderHeading(slice); err == nil {
		t.Fatal("renderHeading() accepted level 4")
	}
}

// ---------------------------------------------------------------------------
// TestRenderMarkdownSlice - Normalization and presentation wrapping
// ---------------------------------------------------------------------------

func TestRenderMarkdownSlice(t *testing.T) {
	t.Parallel()

	slice := &MarkdownSlice{
		SliceAttrs: SliceAttrs{DisplayLabel: true},
		Content: LocalizedString{
			LocaleEN: "First line\nwraps here.\n\n\n\nNew paragraph.",
			LocaleFR: "Première ligne.",
		},
	}
	out, err := testRenderSet(LocaleEN).renderMarkdown(slice)
	if err != nil {
		t.Fatalf("renderMarkdown() unexpected error: %v", err)
	}
	if !strings.Contains(out, "First line wraps here.") {
		t.Errorf("single newline not collapsed: %s", out)
	}
	if !strings.Contains(out, "New paragraph.") {
		t.Errorf("paragraph break lost: %s", out)
	}
}

func TestRenderMarkdownSlice_Presentation(t *testing.T) {
	t.Parallel()

	slice := &MarkdownSlice{
		SliceAttrs: SliceAttrs{
			DisplayLabel: true,
			Presentation: PresentationFigure,
			Label:        LocalizedString{LocaleEN: "Box 1", LocaleFR: "Encadré 1"},
		},
		Content: uniformLocalized("Body text."),
	}
	out, err := testRenderSet(LocaleEN).renderMarkdown(slice)
	if err != nil {
		t.Fatalf("renderMarkdown() unexpected error: %v", err)
	}
	if !strings.Contains(out, "<figure>") || !strings.Contains(out, "<figcaption>") {
		t.Errorf("figure presentation missing: %s", out)
	}
	if !strings.Contains(out, "Box 1") {
		t.Errorf("caption text missing: %s", out)
	}

	slice.Presentation = PresentationAside
	out, err = testRenderSet(LocaleEN).renderMarkdown(slice)
	if err != nil {
		t.Fatalf("renderMarkdown() unexpected error: %v", err)
	}
	if !strings.Contains(out, "<aside>") {
		t.Errorf("aside presentation missing: %s", out)
	}
}

func TestSliceLabelLine_ReferencedAs(t *testing.T) {
	t.Parallel()

	rs := testRenderSet(LocaleEN)
	line := rs.sliceLabelLine(&SliceAttrs{
		DisplayLabel: true,
		ReferencedAs: uniformLocalized("Table 1"),
		Label:        LocalizedString{LocaleEN: "Fiscal outlook", LocaleFR: "Perspectives"},
	})
	want := `<span class="pboml-slice-ref">Table 1</span> - <span>Fiscal outlook</span>`
	if line != want {
		t.Errorf("sliceLabelLine() = %q, want %q", line, want)
	}

	if got := rs.sliceLabelLine(&SliceAttrs{DisplayLabel: false, Label: uniformLocalized("x")}); got != "" {
		t.Errorf("hidden label rendered: %q", got)
	}
}

// ---------------------------------------------------------------------------
// TestRenderHeaderFooter
// ---------------------------------------------------------------------------

func TestRenderHeaderFooter(t *testing.T) {
	t.Parallel()

	meta := &Metadata{
		ID:          "RP-2425-012",
		Title:       LocalizedString{LocaleEN: "Economic Outlook", LocaleFR: "Perspectives économiques"},
		Type:        LocalizedString{LocaleEN: "Report", LocaleFR: "Rapport"},
		Copyright:   LocalizedString{LocaleEN: "© Office 2024", LocaleFR: "© Bureau 2024"},
		ReleaseDate: time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC),
	}

	var b strings.Builder
	rs := testRenderSet(LocaleEN)
	rs.renderHeader(&b, meta)
	rs.renderFooter(&b, meta)
	out := b.String()

	for _, want := range []string{
		"<h1>Economic Outlook</h1>",
		`<p class="pboml-doc-type">Report</p>`,
		`<time datetime="2024-03-12">March 12, 2024</time>`,
		"&bull;",
		"RP-2425-012",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}

	b.Reset()
	rsFR := testRenderSet(LocaleFR)
	rsFR.renderHeader(&b, meta)
	if !strings.Contains(b.String(), "12 mars 2024") {
		t.Errorf("French long date missing: %s", b.String())
	}
}

func TestFormatLongDate(t *testing.T) {
	t.Parallel()

	d := time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC)
	if got := formatLongDate(d, LocaleEN); got != "August 1, 2024" {
		t.Errorf("en = %q", got)
	}
	if got := formatLongDate(d, LocaleFR); got != "1 août 2024" {
		t.Errorf("fr = %q", got)
	}
}

// ---------------------------------------------------------------------------
// TestRenderAnnotations
// ---------------------------------------------------------------------------

func TestRenderAnnotations(t *testing.T) {
	t.Parallel()

	annotations := []Annotation{
		{
			ID:          "1",
			ContentType: AnnotationMarkdown,
			Content:     LocalizedString{LocaleEN: "A plain note.", LocaleFR: "Une note."},
		},
		{
			ID:          "2",
			ContentType: AnnotationBibtex,
			Content: uniformLocalized(`@article{smith2020,
  author = {Smith, J.},
  year = {2020},
  title = {On Deficits},
  journal = {Fiscal Review}
}`),
		},
	}

	out, err := testRenderSet(LocaleEN).renderAnnotations(annotations)
	if err != nil {
		t.Fatalf("renderAnnotations() unexpected error: %v", err)
	}

	for _, want := range []string{
		`<aside role="note"`,
		`<li id="antn_1">`,
		`<span id="annotation-1" class="sr-only">Note #1</span>`,
		"A plain note.",
		`<li id="antn_2">`,
		"<cite>On Deficits</cite>",
		"<em>Fiscal Review</em>",
		"(2020)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}

func TestFormatBibtexCitation_FallsBackToRaw(t *testing.T) {
	t.Parallel()

	out := formatBibtexCitation("@misc{x,}")
	if !strings.Contains(out, "pboml-bibtex") {
		t.Errorf("fallback rendering missing: %q", out)
	}
}
