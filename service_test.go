package pboml

import (
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestGenerate - Full pipeline, both locales
// ---------------------------------------------------------------------------

func TestGenerate_MinimalDocument(t *testing.T) {
	t.Parallel()

	out, err := New().Generate(minimalDoc)
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}

	if len(out) != 2 {
		t.Fatalf("got %d locales, want exactly 2", len(out))
	}
	for _, loc := range Locales {
		page, ok := out[loc]
		if !ok {
			t.Fatalf("output missing locale %q", loc)
		}
		for _, want := range []string{
			"<!DOCTYPE html>",
			`<html lang="` + string(loc) + `"`,
			"<head>",
			"</head>",
			"<body>",
			"</body>",
			"</html>",
			`<meta charset="utf-8"`,
			"<main",
		} {
			if !strings.Contains(page, want) {
				t.Errorf("locale %s page missing %q", loc, want)
			}
		}
	}

	if !strings.Contains(out[LocaleEN], "Hello world") {
		t.Error("English content missing from en page")
	}
	if !strings.Contains(out[LocaleFR], "Bonjour le monde") {
		t.Error("French content missing from fr page")
	}
	if strings.Contains(out[LocaleFR], "Hello world") {
		t.Error("English content leaked into fr page")
	}
}

func TestGenerate_ReferencesResolved(t *testing.T) {
	t.Parallel()

	input := `
pboml:
  version: 1.0.0
annotations:
  - id: "1"
    content_type: markdown
    content: {en: "Source data note.", fr: "Note sur les données."}
slices:
  - type: markdown
    content: {en: "Deficits grew [^1] last year.", fr: "Les déficits ont augmenté [^1] l'an dernier."}
`
	out, err := New().Generate(input)
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}

	for _, loc := range Locales {
		page := out[loc]
		if !strings.Contains(page, `href="#annotation-1"`) {
			t.Errorf("locale %s: reference anchor missing", loc)
		}
		if strings.Contains(page, "[^") {
			t.Errorf("locale %s: unresolved marker remains", loc)
		}
		if !strings.Contains(page, `id="antn_1"`) {
			t.Errorf("locale %s: annotation target missing", loc)
		}
	}
}

func TestGenerate_MetadataInHead(t *testing.T) {
	t.Parallel()

	input := `
pboml:
  version: 1.0.0
document:
  id: RP-2425-012
  title: {en: Economic Outlook, fr: Perspectives économiques}
  release_date: 2024-03-12
slices:
  - type: markdown
    content: {en: Body, fr: Corps}
`
	out, err := New().Generate(input)
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}

	en := out[LocaleEN]
	for _, want := range []string{
		"<title>Economic Outlook</title>",
		`property="og:title" content="Economic Outlook"`,
		`<script type="application/ld+json">`,
		`"identifier":"RP-2425-012"`,
		`"datePublished":"2024-03-12"`,
	} {
		if !strings.Contains(en, want) {
			t.Errorf("en page missing %q", want)
		}
	}
	if !strings.Contains(out[LocaleFR], "<title>Perspectives économiques</title>") {
		t.Error("fr page missing localized title")
	}
}

func TestGenerate_FailsWholeCallOnInvalidSlice(t *testing.T) {
	t.Parallel()

	input := `
pboml:
  version: 1.0.0
slices:
  - type: markdown
    content: {en: Fine, fr: Bien}
  - type: heading
    level: 9
    content: {en: Bad, fr: Mauvais}
`
	out, err := New().Generate(input)
	if out != nil {
		t.Error("Generate() returned partial output on failure")
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Generate() error = %v, want *ValidationError", err)
	}
}

// ---------------------------------------------------------------------------
// TestServiceOptions - Collaborator injection
// ---------------------------------------------------------------------------

type fixedMarkdown struct{}

func (fixedMarkdown) Convert(string) (string, error) { return "<p>FIXED</p>", nil }

func TestWithMarkdown(t *testing.T) {
	t.Parallel()

	out, err := New(WithMarkdown(fixedMarkdown{})).Generate(minimalDoc)
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	if !strings.Contains(out[LocaleEN], "<p>FIXED</p>") {
		t.Error("injected markdown converter not used")
	}
}

type emptyMetaProvider struct{}

func (emptyMetaProvider) MetaTags(*Metadata, Locale) map[string]string    { return nil }
func (emptyMetaProvider) StructuredData(*Metadata, Locale) map[string]any { return nil }

func TestWithMetaProvider(t *testing.T) {
	t.Parallel()

	out, err := New(WithMetaProvider(emptyMetaProvider{})).Generate(minimalDoc)
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	if strings.Contains(out[LocaleEN], "application/ld+json") {
		t.Error("default structured data emitted despite injected provider")
	}
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	s := New()
	if s.strict {
		t.Error("strict mode should default off")
	}
	if s.logger == nil || s.md == nil || s.meta == nil {
		t.Error("default collaborators not wired")
	}

	s = New(WithStrictMode(true))
	if !s.strict {
		t.Error("WithStrictMode(true) not applied")
	}
}
