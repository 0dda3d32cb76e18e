package pboml

import (
	"fmt"
	"regexp"
	"strings"
)

// ---------------------------------------------------------------------------
// SVG slices
// ---------------------------------------------------------------------------

var (
	svgViewBoxPattern = regexp.MustCompile(`(?i)\bviewBox\s*=`)
	svgWidthPattern   = regexp.MustCompile(`(?i)\swidth\s*=\s*["']?([\d.]+)`)
	svgHeightPattern  = regexp.MustCompile(`(?i)\sheight\s*=\s*["']?([\d.]+)`)
)

// renderSVG inlines the sanitized markup in a responsive container,
// deriving a viewBox from width/height when the author omitted one.
func (r *renderSet) renderSVG(s *SVGSlice) (string, error) {
	markup := injectViewBox(s.Content.Get(r.loc))

	var b strings.Builder
	b.WriteString(`<div class="pboml-svg-wrapper">`)
	b.WriteString(markup)
	for _, alt := range s.Alts {
		if text := alt.Get(r.loc); text != "" {
			b.WriteString(`<p class="sr-only">` + escapeHTML(text) + `</p>`)
		}
	}
	b.WriteString(`</div>`)

	return r.sliceSection(&s.SliceAttrs, KindSVG, b.String()), nil
}

// injectViewBox adds a viewBox derived from explicit width and height
// attributes when the root svg element lacks one.
func injectViewBox(markup string) string {
	tag := svgOpenTagPattern.FindString(markup)
	if tag == "" || svgViewBoxPattern.MatchString(tag) {
		return markup
	}
	wm := svgWidthPattern.FindStringSubmatch(tag)
	hm := svgHeightPattern.FindStringSubmatch(tag)
	if wm == nil || hm == nil {
		return markup
	}
	withBox := strings.Replace(tag, "<svg",
		fmt.Sprintf(`<svg viewBox="0 0 %s %s"`, wm[1], hm[1]), 1)
	return strings.Replace(markup, tag, withBox, 1)
}

// ---------------------------------------------------------------------------
// Bitmap slices
// ---------------------------------------------------------------------------

// breakpointMedia maps each thumbnail size to its media query.
var breakpointMedia = map[string]string{
	"sm": "(max-width: 640px)",
	"md": "(max-width: 768px)",
	"lg": "(min-width: 769px)",
}

var encodingMIME = map[string]string{
	"webp": "image/webp",
	"png":  "image/png",
}

// renderBitmap emits a picture element with one source per breakpoint and
// encoding, both densities joined in each srcset, and a fallback img.
// Bitmap alt entries beyond the first render as a visible description.
func (r *renderSet) renderBitmap(s *BitmapSlice) (string, error) {
	thumbs := s.Thumbnails[r.loc]

	var b strings.Builder
	b.WriteString(`<picture class="pboml-bitmap">`)
	for _, size := range []string{"sm", "md", "lg"} {
		for _, encoding := range []string{"webp", "png"} {
			oneX := thumbs[size+"_1x_"+encoding]
			twoX := thumbs[size+"_2x_"+encoding]
			if oneX == "" && twoX == "" {
				continue
			}
			srcset := make([]string, 0, 2)
			if oneX != "" {
				srcset = append(srcset, oneX+" 1x")
			}
			if twoX != "" {
				srcset = append(srcset, twoX+" 2x")
			}
			fmt.Fprintf(&b, `<source media=%q type=%q srcset=%q/>`,
				breakpointMedia[size], encodingMIME[encoding], strings.Join(srcset, ", "))
		}
	}

	alt := ""
	if len(s.Alts) > 0 {
		alt = s.Alts[0].Get(r.loc)
	} else if label := s.Label.Get(r.loc); label != "" {
		alt = label
	}
	fmt.Fprintf(&b, `<img src=%q alt=%q loading="lazy" decoding="async"/>`,
		s.Content.Get(r.loc), alt)
	b.WriteString(`</picture>`)

	if len(s.Alts) > 1 {
		b.WriteString(`<div class="pboml-bitmap-description"><h3>` + r.ui("description") + `</h3>`)
		for _, extra := range s.Alts[1:] {
			b.WriteString(`<p>` + escapeHTML(extra.Get(r.loc)) + `</p>`)
		}
		b.WriteString(`</div>`)
	}

	return r.sliceSection(&s.SliceAttrs, KindBitmap, b.String()), nil
}
