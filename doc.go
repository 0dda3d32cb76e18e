// Package pboml renders bilingual YAML-authored structured documents into
// accessible HTML, one complete page per locale.
//
// # Quick Start
//
// Create a service and generate both locale pages from one source:
//
//	svc := pboml.New()
//	out, err := svc.Generate(documentText)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(out[pboml.LocaleEN])
//	fmt.Println(out[pboml.LocaleFR])
//
// Use Parse to stop after validation and normalization:
//
//	doc, err := svc.Parse(documentText)
//
// # Document Model
//
// A document is a sequence of typed content blocks called slices: markdown,
// heading, table, chart, svg, bitmap, kvlist, and html. Every authored text
// carries both an English and a French variant; validation enforces that
// invariant uniformly.
//
// # Pipeline
//
// Generation runs these stages in order, failing fast on any error before
// the last:
//
//  1. YAML decoding with preserved mapping order
//  2. Structural validation (root, metadata, annotations, per-slice rules)
//  3. Slice normalization into canonical records
//  4. Per-locale rendering (English first, then French)
//  5. Footnote-marker reference resolution
//  6. Page assembly with meta tags and JSON-LD structured data
//  7. Accessibility enhancement (best-effort, never fatal)
//
// # Configuration
//
// Use functional options to customize the service:
//
//	svc := pboml.New(
//	    pboml.WithStrictMode(true),
//	    pboml.WithLogger(logger),
//	    pboml.WithMarkdown(customConverter),
//	    pboml.WithMetaProvider(customProvider),
//	)
//
// Strict mode adds checks aimed at publication workflows: required metadata
// fields, heading length caps, and no future release dates.
package pboml
