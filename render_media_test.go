package pboml

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRenderSVG - Sanitized inline markup and viewBox derivation
// ---------------------------------------------------------------------------

func TestRenderSVG_InjectsViewBox(t *testing.T) {
	t.Parallel()

	slice := &SVGSlice{
		Content: uniformLocalized(`<svg xmlns="http://www.w3.org/2000/svg" width="640" height="480"><rect width="10" height="10"/></svg>`),
	}
	out, err := testRenderSet(LocaleEN).renderSVG(slice)
	if err != nil {
		t.Fatalf("renderSVG() unexpected error: %v", err)
	}
	if !strings.Contains(out, `viewBox="0 0 640 480"`) {
		t.Errorf("derived viewBox missing: %s", out)
	}
	if !strings.Contains(out, `class="pboml-svg-wrapper"`) {
		t.Errorf("responsive wrapper missing: %s", out)
	}
}

func TestRenderSVG_KeepsExistingViewBox(t *testing.T) {
	t.Parallel()

	slice := &SVGSlice{
		Content: uniformLocalized(`<svg viewBox="0 0 10 10" width="640" height="480"></svg>`),
	}
	out, err := testRenderSet(LocaleEN).renderSVG(slice)
	if err != nil {
		t.Fatalf("renderSVG() unexpected error: %v", err)
	}
	if !strings.Contains(out, `viewBox="0 0 10 10"`) || strings.Contains(out, "0 0 640 480") {
		t.Errorf("existing viewBox not preserved: %s", out)
	}
}

func TestRenderSVG_AltsAsHiddenText(t *testing.T) {
	t.Parallel()

	slice := &SVGSlice{
		SliceAttrs: SliceAttrs{
			Alts: []LocalizedString{{LocaleEN: "A rising trend.", LocaleFR: "Une tendance à la hausse."}},
		},
		Content: uniformLocalized(`<svg viewBox="0 0 10 10"></svg>`),
	}
	out, err := testRenderSet(LocaleFR).renderSVG(slice)
	if err != nil {
		t.Fatalf("renderSVG() unexpected error: %v", err)
	}
	if !strings.Contains(out, `<p class="sr-only">Une tendance à la hausse.</p>`) {
		t.Errorf("hidden alt text missing: %s", out)
	}
}

func TestSanitizeSVG(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		wantAbsent []string
		want       string
	}{
		{
			name:       "script block stripped",
			input:      `<svg viewBox="0 0 1 1"><script>alert(1)</script><rect/></svg>`,
			wantAbsent: []string{"<script", "alert"},
		},
		{
			name:       "event handler stripped",
			input:      `<svg viewBox="0 0 1 1"><rect onclick="x()"/></svg>`,
			wantAbsent: []string{"onclick"},
		},
		{
			name:       "external xlink stripped, fragment kept",
			input:      `<svg viewBox="0 0 1 1"><use xlink:href="http://e/x"/><use xlink:href="#ok"/></svg>`,
			wantAbsent: []string{"http://e/x"},
			want:       `xlink:href="#ok"`,
		},
		{
			name:  "missing xmlns injected",
			input: `<svg viewBox="0 0 1 1"><rect/></svg>`,
			want:  `xmlns="http://www.w3.org/2000/svg"`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := sanitizeSVG(tt.input)
			for _, absent := range tt.wantAbsent {
				if strings.Contains(got, absent) {
					t.Errorf("sanitized output still contains %q: %s", absent, got)
				}
			}
			if tt.want != "" && !strings.Contains(got, tt.want) {
				t.Errorf("sanitized output missing %q: %s", tt.want, got)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRenderBitmap - Responsive source set
// ---------------------------------------------------------------------------

func testBitmapSlice() *BitmapSlice {
	thumbs := map[string]string{}
	for _, format := range thumbnailFormats {
		thumbs[format] = "/img/en/" + format + ".bin"
	}
	return &BitmapSlice{
		SliceAttrs: SliceAttrs{
			Label: LocalizedString{LocaleEN: "Population chart", LocaleFR: "Graphique de population"},
		},
		Content:    LocalizedString{LocaleEN: "/img/full-en.png", LocaleFR: "/img/full-fr.png"},
		Thumbnails: map[Locale]map[string]string{LocaleEN: thumbs, LocaleFR: thumbs},
	}
}

func TestRenderBitmap(t *testing.T) {
	t.Parallel()

	out, err := testRenderSet(LocaleEN).renderBitmap(testBitmapSlice())
	if err != nil {
		t.Fatalf("renderBitmap() unexpected error: %v", err)
	}

	// Three breakpoints x two encodings, both densities folded into srcset.
	if sources := strings.Count(out, "<source "); sources != 6 {
		t.Errorf("got %d source elements, want 6", sources)
	}
	for _, want := range []string{
		`media="(max-width: 640px)"`,
		`media="(max-width: 768px)"`,
		`media="(min-width: 769px)"`,
		`type="image/webp"`,
		`type="image/png"`,
		`srcset="/img/en/sm_1x_webp.bin 1x, /img/en/sm_2x_webp.bin 2x"`,
		`<img src="/img/full-en.png" alt="Population chart" loading="lazy" decoding="async"/>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}

func TestRenderBitmap_ExtraAltsVisible(t *testing.T) {
	t.Parallel()

	slice := testBitmapSlice()
	slice.Alts = []LocalizedString{
		{LocaleEN: "Primary alt.", LocaleFR: "Alt principal."},
		{LocaleEN: "Longer description.", LocaleFR: "Description plus longue."},
	}

	out, err := testRenderSet(LocaleEN).renderBitmap(slice)
	if err != nil {
		t.Fatalf("renderBitmap() unexpected error: %v", err)
	}
	if !strings.Contains(out, `alt="Primary alt."`) {
		t.Errorf("first alt not used on img: %s", out)
	}
	if !strings.Contains(out, "pboml-bitmap-description") || !strings.Contains(out, "Longer description.") {
		t.Errorf("extra alt description missing: %s", out)
	}

	// A single alt entry renders no visible description block.
	slice.Alts = slice.Alts[:1]
	out, err = testRenderSet(LocaleEN).renderBitmap(slice)
	if err != nil {
		t.Fatalf("renderBitmap() unexpected error: %v", err)
	}
	if strings.Contains(out, "pboml-bitmap-description") {
		t.Errorf("description block rendered for single alt: %s", out)
	}
}

// ---------------------------------------------------------------------------
// TestRenderHTMLSlice - Shadow host isolation
// ---------------------------------------------------------------------------

func TestRenderHTMLSlice(t *testing.T) {
	t.Parallel()

	slice := &HTMLSlice{
		Content: uniformLocalized("<p>Widget</p>"),
		CSS:     "p { color: teal; }",
	}
	rs := testRenderSet(LocaleEN)
	out, err := rs.renderHTML(slice)
	if err != nil {
		t.Fatalf("renderHTML() unexpected error: %v", err)
	}

	for _, want := range []string{
		`<template shadowrootmode="open">`,
		`id="pboml-html-host-1"`,
		":host",
		"p { color: teal; }",
		"<p>Widget</p>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}

	// Host ids advance within one render set.
	out2, err := rs.renderHTML(slice)
	if err != nil {
		t.Fatalf("renderHTML() unexpected error: %v", err)
	}
	if !strings.Contains(out2, `id="pboml-html-host-2"`) {
		t.Errorf("second host id not advanced: %s", out2)
	}

	// A fresh render set restarts the sequence: no cross-locale leakage.
	fresh, err := testRenderSet(LocaleFR).renderHTML(slice)
	if err != nil {
		t.Fatalf("renderHTML() unexpected error: %v", err)
	}
	if !strings.Contains(fresh, `id="pboml-html-host-1"`) {
		t.Errorf("fresh render set did not reset host ids: %s", fresh)
	}
}

func TestRenderHTMLSlice_RemoveDefaultStyles(t *testing.T) {
	t.Parallel()

	slice := &HTMLSlice{
		Content:             uniformLocalized("<p>bare</p>"),
		RemoveDefaultStyles: true,
	}
	out, err := testRenderSet(LocaleEN).renderHTML(slice)
	if err != nil {
		t.Fatalf("renderHTML() unexpected error: %v", err)
	}
	if strings.Contains(out, ":host") {
		t.Errorf("default styles rendered despite opt-out: %s", out)
	}
}
