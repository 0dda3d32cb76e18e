package pboml

import (
	"fmt"
	"strings"

	"github.com/pbo-tools/go-pboml/internal/yamlutil"
)

// Parse orchestration: decode the YAML tree, validate the root structure,
// the optional document metadata and annotations, then validate and process
// every slice in order. Any failure aborts the whole call; no partial
// Document is ever returned.

func (s *Service) parse(text string) (*Document, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	var tree any
	if err := yamlutil.UnmarshalOrdered([]byte(text), &tree); err != nil {
		return nil, &ParseError{
			Line:    yamlutil.ErrorLine(err),
			Snippet: yamlutil.ErrorSnippet(err),
			Err:     err,
		}
	}

	rootV := &rootValidator{}
	if !rootV.validate(tree) {
		return nil, validationError("", rootV.errors())
	}
	root, _ := asMap(tree)

	doc := &Document{}

	if metaRaw, present := mapGet(root, "document"); present {
		metaV := newMetadataValidator(s.strict)
		if !metaV.validate(metaRaw) {
			return nil, validationError("", metaV.errors())
		}
		doc.Metadata = buildMetadata(metaRaw)
	}

	if annRaw, present := mapGet(root, "annotations"); present {
		annotations, err := s.parseAnnotations(annRaw, doc.docID())
		if err != nil {
			return nil, err
		}
		doc.Annotations = annotations
	}

	slicesRaw, _ := mapGet(root, "slices")
	sliceNodes, _ := asSlice(slicesRaw)
	doc.Slices = make([]Slice, 0, len(sliceNodes))
	for i, node := range sliceNodes {
		slice, err := s.parseSlice(i, node, doc.docID())
		if err != nil {
			return nil, err
		}
		doc.Slices = append(doc.Slices, slice)
	}

	return doc, nil
}

// docID is the metadata id when present, for error context.
func (d *Document) docID() string {
	if d.Metadata != nil {
		return d.Metadata.ID
	}
	return ""
}

func (s *Service) parseSlice(index int, node any, docID string) (Slice, error) {
	m, ok := asMap(node)
	if !ok {
		return nil, validationError(docID, []FieldError{{
			Message: fmt.Sprintf("slice %d must be a mapping", index),
			Context: ctx("field", "slices", "index", itoa(index)),
		}})
	}
	typRaw, _ := mapGet(m, "type")
	typ, _ := asString(typRaw)
	kind := SliceKind(typ)
	if !sliceKinds[kind] {
		return nil, validationError(docID, []FieldError{{
			Message: fmt.Sprintf("unsupported slice type %q", typ),
			Context: ctx("field", "slices", "index", itoa(index), "type", typ),
		}})
	}

	v := sliceValidatorFor(kind, s.strict)
	if !v.validate(node) {
		findings := v.errors()
		for i := range findings {
			if findings[i].Context == nil {
				findings[i].Context = map[string]string{}
			}
			findings[i].Context["index"] = itoa(index)
		}
		return nil, validationError(docID, findings)
	}

	slice, err := processSlice(kind, node)
	if err != nil {
		return nil, err
	}
	return slice, nil
}

// parseAnnotations validates each entry and enforces document-wide id
// uniqueness. Annotation order is the visual order of the notes section.
func (s *Service) parseAnnotations(v any, docID string) ([]Annotation, error) {
	entries, ok := asSlice(v)
	if !ok {
		return nil, validationError(docID, []FieldError{{
			Message: "field \"annotations\" must be a sequence",
			Context: ctx("field", "annotations"),
		}})
	}

	seen := make(map[string]bool, len(entries))
	annotations := make([]Annotation, 0, len(entries))
	for i, entry := range entries {
		annV := &annotationValidator{}
		if !annV.validate(entry) {
			return nil, validationError(docID, annV.errors())
		}

		m, _ := asMap(entry)
		id, _ := asText(rawOf(m, "id"))
		if seen[id] {
			return nil, validationError(docID, []FieldError{{
				Message: fmt.Sprintf("annotation id %q is duplicated", id),
				Context: ctx("field", "annotations", "index", itoa(i), "annotation", id),
			}})
		}
		seen[id] = true

		contentType, _ := asString(rawOf(m, "content_type"))
		annotations = append(annotations, Annotation{
			ID:          id,
			ContentType: AnnotationContentType(contentType),
			Content:     coerceLocalized(rawOf(m, "content")),
		})
	}
	return annotations, nil
}

// buildMetadata converts a validated document block into canonical metadata.
func buildMetadata(v any) *Metadata {
	m, _ := asMap(v)
	meta := &Metadata{
		Title:     coerceLocalized(rawOf(m, "title")),
		Type:      coerceLocalized(rawOf(m, "type")),
		Copyright: coerceLocalized(rawOf(m, "copyright")),
	}
	meta.ID, _ = asString(rawOf(m, "id"))
	meta.Form, _ = asString(rawOf(m, "form"))
	meta.URL, _ = asString(rawOf(m, "url"))
	if raw, present := mapGet(m, "release_date"); present {
		if date, err := coerceDate(raw); err == nil {
			meta.ReleaseDate = date
		}
	}
	return meta
}
