package pboml

import "time"

// Version is the only pboml schema version this pipeline accepts.
const Version = "1.0.0"

// AnnotationContentType declares how an annotation body is interpreted.
type AnnotationContentType string

const (
	AnnotationMarkdown AnnotationContentType = "markdown"
	AnnotationBibtex   AnnotationContentType = "bibtex"
)

// Metadata is the optional document-level descriptor block.
type Metadata struct {
	ID          string
	Title       LocalizedString
	Type        LocalizedString
	Copyright   LocalizedString
	ReleaseDate time.Time
	Form        string
	URL         string
}

// Annotation is one entry of the document's notes section. ID is unique
// within the document; order is the visual order of the rendered list.
type Annotation struct {
	ID          string
	ContentType AnnotationContentType
	Content     LocalizedString
}

// Document is the canonical parsed form. It is built exactly once per Parse
// call and never mutated afterwards.
type Document struct {
	Metadata    *Metadata
	Slices      []Slice
	Annotations []Annotation
}

// annotationIndex returns the 1-based position of the annotation with the
// given id, or 0 when absent.
func (d *Document) annotationIndex(id string) int {
	for i, a := range d.Annotations {
		if a.ID == id {
			return i + 1
		}
	}
	return 0
}

// RenderedOutput maps each locale to its complete standalone HTML document.
type RenderedOutput map[Locale]string
