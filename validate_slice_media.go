package pboml

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	svgBlockPattern   = regexp.MustCompile(`(?is)<svg\b[^>]*>.*</svg>`)
	svgScriptPattern  = regexp.MustCompile(`(?is)<script\b`)
	svgHandlerPattern = regexp.MustCompile(`(?i)\son\w+\s*=`)
	// xlink:href may only reference in-document fragments.
	svgXlinkPattern = regexp.MustCompile(`(?i)xlink:href\s*=\s*["']([^"'#][^"']*)["']`)

	imgPlaceholderPattern = regexp.MustCompile(`^/api/placeholder/\d+/\d+$`)
	srcAttrPattern        = regexp.MustCompile(`(?i)\bsrc\s*=\s*["']([^"']+)["']`)
	imgTagPattern         = regexp.MustCompile(`(?is)<img\b[^>]*>`)
)

// thumbnailFormats are the twelve required thumbnail keys per locale:
// breakpoint x density x encoding.
var thumbnailFormats = buildThumbnailFormats()

func buildThumbnailFormats() []string {
	formats := make([]string, 0, 12)
	for _, size := range []string{"sm", "md", "lg"} {
		for _, density := range []string{"1x", "2x"} {
			for _, encoding := range []string{"webp", "png"} {
				formats = append(formats, fmt.Sprintf("%s_%s_%s", size, density, encoding))
			}
		}
	}
	return formats
}

// allowedExternalDomains gates external src attributes in html slices.
var allowedExternalDomains = map[string]bool{
	"cdnjs.cloudflare.com": true,
}

// dangerousCSSPatterns reject style sheets able to trigger script execution
// or resource smuggling in legacy engines.
var dangerousCSSPatterns = []string{
	"@import", "expression", "javascript:", "behavior", "-moz-binding",
}

// ---------------------------------------------------------------------------
// SVG
// ---------------------------------------------------------------------------

type svgValidator struct {
	acc errorAccumulator
}

func (v *svgValidator) errors() []FieldError { return v.acc.findings }

func (v *svgValidator) validate(node any) bool {
	m, ok := nodeMap(node)
	if !ok {
		v.acc.add(ctx("slice", "svg"), "svg slice must be a mapping")
		return false
	}
	if !checkSliceAttrs(m, &v.acc) {
		return false
	}

	raw, present := mapGet(m.items, "content")
	if !present {
		v.acc.add(ctx("slice", "svg", "field", "content"), "svg slice is missing content")
		return false
	}
	content, ok := checkLocalized(raw, "content", &v.acc)
	if !ok {
		return false
	}

	for _, loc := range Locales {
		markup := content.Get(loc)
		lctx := ctx("slice", "svg", "field", "content", "locale", string(loc))
		switch {
		case !svgBlockPattern.MatchString(markup):
			v.acc.addf(lctx, "svg content for locale %q is not a well-formed <svg> block", loc)
		case !strings.Contains(markup, "viewBox") && !strings.Contains(markup, "xmlns"):
			v.acc.addf(lctx, "svg content for locale %q must declare viewBox or xmlns", loc)
		case svgScriptPattern.MatchString(markup):
			v.acc.addf(lctx, "svg content for locale %q contains a script tag", loc)
		case svgHandlerPattern.MatchString(markup):
			v.acc.addf(lctx, "svg content for locale %q contains an event handler attribute", loc)
		case svgXlinkPattern.MatchString(markup):
			v.acc.addf(lctx, "svg content for locale %q references an external xlink:href", loc)
		}
	}

	return v.acc.empty()
}

// ---------------------------------------------------------------------------
// Bitmap
// ---------------------------------------------------------------------------

type bitmapValidator struct {
	acc errorAccumulator
}

func (v *bitmapValidator) errors() []FieldError { return v.acc.findings }

func (v *bitmapValidator) validate(node any) bool {
	m, ok := nodeMap(node)
	if !ok {
		v.acc.add(ctx("slice", "bitmap"), "bitmap slice must be a mapping")
		return false
	}
	if !checkSliceAttrs(m, &v.acc) {
		return false
	}

	contentRaw, present := mapGet(m.items, "content")
	if !present {
		v.acc.add(ctx("slice", "bitmap", "field", "content"), "bitmap slice is missing content")
		return false
	}
	if _, ok := checkLocalized(contentRaw, "content", &v.acc); !ok {
		return false
	}

	thumbsRaw, present := mapGet(m.items, "thumbnails")
	if !present {
		v.acc.add(ctx("slice", "bitmap", "field", "thumbnails"), "bitmap slice is missing thumbnails")
		return false
	}
	thumbs, isMap := asMap(thumbsRaw)
	if !isMap {
		v.acc.add(ctx("slice", "bitmap", "field", "thumbnails"), "bitmap thumbnails must be a mapping per locale")
		return false
	}

	for _, loc := range Locales {
		localeRaw, hasLocale := mapGet(thumbs, string(loc))
		if !hasLocale {
			v.acc.addf(ctx("slice", "bitmap", "field", "thumbnails", "locale", string(loc)),
				"bitmap thumbnails are missing locale %q", loc)
			continue
		}
		localeThumbs, isMap := asMap(localeRaw)
		if !isMap {
			v.acc.addf(ctx("slice", "bitmap", "field", "thumbnails", "locale", string(loc)),
				"bitmap thumbnails for locale %q must be a mapping", loc)
			continue
		}

		var missing []string
		for _, format := range thumbnailFormats {
			raw, hasFormat := mapGet(localeThumbs, format)
			if !hasFormat {
				missing = append(missing, format)
				continue
			}
			path, isStr := asString(raw)
			if !isStr || !validImagePath(path) {
				v.acc.addf(ctx("slice", "bitmap", "field", "thumbnails", "locale", string(loc), "format", format),
					"bitmap thumbnail %s for locale %q is not a valid URL or image path", format, loc)
			}
		}
		if len(missing) > 0 {
			v.acc.addf(ctx("slice", "bitmap", "field", "thumbnails", "locale", string(loc),
				"missing_formats", strings.Join(missing, ",")),
				"bitmap thumbnails for locale %q are missing formats: %s", loc, strings.Join(missing, ", "))
		}
	}

	return v.acc.empty()
}

// validImagePath accepts absolute http(s) URLs and relative image paths.
func validImagePath(s string) bool {
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		u, err := url.Parse(s)
		return err == nil && u.Host != ""
	}
	return !strings.ContainsAny(s, " \t\n")
}

// ---------------------------------------------------------------------------
// Key/value list
// ---------------------------------------------------------------------------

type kvlistValidator struct {
	acc errorAccumulator
}

func (v *kvlistValidator) errors() []FieldError { return v.acc.findings }

func (v *kvlistValidator) validate(node any) bool {
	m, ok := nodeMap(node)
	if !ok {
		v.acc.add(ctx("slice", "kvlist"), "kvlist slice must be a mapping")
		return false
	}
	if !checkSliceAttrs(m, &v.acc) {
		return false
	}

	protoRaw, present := mapGet(m.items, "prototype")
	if !present {
		v.acc.add(ctx("slice", "kvlist", "field", "prototype"), "kvlist slice is missing its prototype")
		return false
	}
	proto, isMap := asMap(protoRaw)
	if !isMap {
		v.acc.add(ctx("slice", "kvlist", "field", "prototype"), "kvlist prototype must be a mapping")
		return false
	}
	for _, side := range []string{"key", "value"} {
		if !v.checkPrototypeField(proto, side) {
			return false
		}
	}

	rowsRaw, present := mapGet(m.items, "content")
	rows, isSeq := asSlice(rowsRaw)
	if !present || !isSeq || len(rows) == 0 {
		v.acc.add(ctx("slice", "kvlist", "field", "content"), "kvlist content must be a non-empty sequence")
		return false
	}
	for i, rowRaw := range rows {
		row, isMap := asMap(rowRaw)
		if !isMap {
			v.acc.addf(ctx("slice", "kvlist", "row", itoa(i)), "kvlist row %d must be a mapping", i)
			return false
		}
		keyRaw, hasKey := mapGet(row, "key")
		if !hasKey {
			v.acc.addf(ctx("slice", "kvlist", "row", itoa(i)), "kvlist row %d is missing its key", i)
			return false
		}
		if !v.checkRowSide(keyRaw, i, "key") {
			return false
		}
		valueRaw, hasValue := mapGet(row, "value")
		if !hasValue {
			v.acc.addf(ctx("slice", "kvlist", "row", itoa(i)), "kvlist row %d is missing its value", i)
			return false
		}
		if values, isList := asSlice(valueRaw); isList {
			for j, entry := range values {
				if !v.checkRowSide(entry, i, "value["+itoa(j)+"]") {
					return false
				}
			}
		} else if !v.checkRowSide(valueRaw, i, "value") {
			return false
		}
	}

	return v.acc.empty()
}

func (v *kvlistValidator) checkPrototypeField(proto mapItems, side string) bool {
	raw, present := mapGet(proto, side)
	if !present {
		v.acc.addf(ctx("slice", "kvlist", "field", "prototype."+side), "kvlist prototype is missing %q", side)
		return false
	}
	field, isMap := asMap(raw)
	if !isMap {
		v.acc.addf(ctx("slice", "kvlist", "field", "prototype."+side), "kvlist prototype %q must be a mapping", side)
		return false
	}

	typRaw, _ := mapGet(field, "type")
	typ, _ := asString(typRaw)
	if typ != string(CellMarkdown) {
		v.acc.addf(ctx("slice", "kvlist", "field", "prototype."+side+".type", "type", typ),
			"kvlist prototype %q has unsupported type %q", side, typ)
		return false
	}

	labelRaw, hasLabel := mapGet(field, "label")
	if !hasLabel {
		v.acc.addf(ctx("slice", "kvlist", "field", "prototype."+side+".label"),
			"kvlist prototype %q is missing its label", side)
		return false
	}
	_, ok := checkLocalized(labelRaw, "prototype."+side+".label", &v.acc)
	return ok
}

func (v *kvlistValidator) checkRowSide(raw any, row int, side string) bool {
	field, isMap := asMap(raw)
	if !isMap {
		v.acc.addf(ctx("slice", "kvlist", "row", itoa(row), "field", side),
			"kvlist row %d %s must be a mapping with localized content", row, side)
		return false
	}
	contentRaw, present := mapGet(field, "content")
	if !present {
		v.acc.addf(ctx("slice", "kvlist", "row", itoa(row), "field", side),
			"kvlist row %d %s is missing content", row, side)
		return false
	}
	_, ok := checkLocalized(contentRaw, "content["+itoa(row)+"]."+side, &v.acc)
	return ok
}

// ---------------------------------------------------------------------------
// HTML
// ---------------------------------------------------------------------------

type htmlValidator struct {
	acc errorAccumulator
}

func (v *htmlValidator) errors() []FieldError { return v.acc.findings }

func (v *htmlValidator) validate(node any) bool {
	m, ok := nodeMap(node)
	if !ok {
		v.acc.add(ctx("slice", "html"), "html slice must be a mapping")
		return false
	}
	if !checkSliceAttrs(m, &v.acc) {
		return false
	}

	raw, present := mapGet(m.items, "content")
	if !present {
		v.acc.add(ctx("slice", "html", "field", "content"), "html slice is missing content")
		return false
	}
	content, ok := checkLocalized(raw, "content", &v.acc)
	if !ok {
		return false
	}

	for _, loc := range Locales {
		markup := content.Get(loc)
		lctx := ctx("slice", "html", "field", "content", "locale", string(loc))
		if hit := findDangerousMarkup(markup); hit != "" {
			v.acc.addf(lctx, "html content for locale %q contains disallowed markup (%s)", loc, hit)
			continue
		}
		if bad := findDisallowedSources(markup); bad != "" {
			v.acc.addf(lctx, "html content for locale %q references disallowed source %q", loc, bad)
		}
	}

	if cssRaw, present := mapGet(m.items, "css"); present {
		css, isStr := asString(cssRaw)
		if !isStr {
			v.acc.add(ctx("slice", "html", "field", "css"), "html css must be a string")
		} else {
			lower := strings.ToLower(css)
			for _, pattern := range dangerousCSSPatterns {
				if strings.Contains(lower, pattern) {
					v.acc.addf(ctx("slice", "html", "field", "css", "pattern", pattern),
						"html css contains disallowed construct %q", pattern)
				}
			}
		}
	}

	if rdsRaw, present := mapGet(m.items, "remove_default_styles"); present {
		if _, isBool := asBool(rdsRaw); !isBool {
			v.acc.add(ctx("slice", "html", "field", "remove_default_styles"),
				"html remove_default_styles must be a boolean")
		}
	}

	return v.acc.empty()
}

// findDisallowedSources scans src attributes: external URLs must point at an
// allowlisted domain, and img tags may only use the fixed placeholder path.
func findDisallowedSources(markup string) string {
	for _, img := range imgTagPattern.FindAllString(markup, -1) {
		m := srcAttrPattern.FindStringSubmatch(img)
		if m == nil {
			continue
		}
		if !imgPlaceholderPattern.MatchString(m[1]) {
			return m[1]
		}
	}

	for _, m := range srcAttrPattern.FindAllStringSubmatch(markup, -1) {
		src := m[1]
		if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
			continue
		}
		u, err := url.Parse(src)
		if err != nil || !allowedExternalDomains[u.Host] {
			return src
		}
	}
	return ""
}
