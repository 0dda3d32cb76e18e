package pboml

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// MetaProvider supplies the page head material the core treats as opaque:
// a flat tag-name to value map and a structured-data object serialized as
// JSON-LD.
type MetaProvider interface {
	MetaTags(meta *Metadata, loc Locale) map[string]string
	StructuredData(meta *Metadata, loc Locale) map[string]any
}

// basicMetaProvider is the default MetaProvider: enough head material for a
// standalone page.
type basicMetaProvider struct{}

func (basicMetaProvider) MetaTags(meta *Metadata, loc Locale) map[string]string {
	tags := map[string]string{
		"og:type":   "article",
		"og:locale": string(loc),
	}
	if meta == nil {
		return tags
	}
	if title := meta.Title.Get(loc); title != "" {
		tags["og:title"] = title
	}
	if meta.URL != "" {
		tags["og:url"] = meta.URL
	}
	if !meta.ReleaseDate.IsZero() {
		tags["article:published_time"] = meta.ReleaseDate.Format("2006-01-02")
	}
	return tags
}

func (basicMetaProvider) StructuredData(meta *Metadata, loc Locale) map[string]any {
	data := map[string]any{
		"@context":   "https://schema.org",
		"@type":      "Report",
		"inLanguage": string(loc),
	}
	if meta == nil {
		return data
	}
	if title := meta.Title.Get(loc); title != "" {
		data["name"] = title
	}
	if meta.ID != "" {
		data["identifier"] = meta.ID
	}
	if meta.URL != "" {
		data["url"] = meta.URL
	}
	if !meta.ReleaseDate.IsZero() {
		data["datePublished"] = meta.ReleaseDate.Format("2006-01-02")
	}
	return data
}

// assemblePage wraps the rendered content fragment in a complete HTML5
// document with the provider's meta tags and JSON-LD block.
func assemblePage(loc Locale, meta *Metadata, provider MetaProvider, content string) (string, error) {
	title := ""
	if meta != nil {
		title = meta.Title.Get(loc)
	}
	if title == "" {
		title = uiStrings["untitled"].Get(loc)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	fmt.Fprintf(&b, "<html lang=%q>\n<head>\n", loc)
	b.WriteString("<meta charset=\"utf-8\"/>\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\"/>\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", escapeHTML(title))

	tags := provider.MetaTags(meta, loc)
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.HasPrefix(name, "og:") || strings.HasPrefix(name, "article:") {
			fmt.Fprintf(&b, "<meta property=%q content=%q/>\n", name, tags[name])
		} else {
			fmt.Fprintf(&b, "<meta name=%q content=%q/>\n", name, tags[name])
		}
	}

	structured := provider.StructuredData(meta, loc)
	if len(structured) > 0 {
		encoded, err := json.Marshal(structured)
		if err != nil {
			return "", fmt.Errorf("encoding structured data: %w", err)
		}
		b.WriteString(`<script type="application/ld+json">`)
		b.Write(encoded)
		b.WriteString("</script>\n")
	}

	b.WriteString("</head>\n<body>\n")
	b.WriteString(content)
	b.WriteString("\n</body>\n</html>\n")
	return b.String(), nil
}
