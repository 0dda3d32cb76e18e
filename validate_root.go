package pboml

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	metadataIDPattern   = regexp.MustCompile(`^[A-Z0-9-]+$`)
	metadataFormPattern = regexp.MustCompile(`^T-[A-Z]{3}-\d+\.\d+\.\d+$`)
	bibtexEntryPattern  = regexp.MustCompile(`(?m)^@\w+\s*\{\s*[\w\-:]+\s*,`)
)

// supportedVersions gates the pboml.version field.
var supportedVersions = map[string]bool{Version: true}

// metadataKeys are the only keys accepted inside the document block.
var metadataKeys = map[string]bool{
	"id": true, "title": true, "type": true, "copyright": true,
	"release_date": true, "form": true, "url": true,
}

// ---------------------------------------------------------------------------
// Root structure
// ---------------------------------------------------------------------------

// rootValidator checks the top-level document shape: a pboml block with a
// supported version and a non-empty slices sequence whose elements all
// declare a type.
type rootValidator struct {
	acc errorAccumulator
}

func (v *rootValidator) errors() []FieldError { return v.acc.findings }

func (v *rootValidator) validate(node any) bool {
	root, ok := asMap(node)
	if !ok {
		v.acc.add(ctx("field", "root"), "document root must be a mapping")
		return false
	}

	for _, field := range []string{"pboml", "slices"} {
		if !mapHas(root, field) {
			v.acc.addf(ctx("field", field), "required field %q is missing", field)
		}
	}
	if !v.acc.empty() {
		return false
	}

	pbomlRaw, _ := mapGet(root, "pboml")
	pbomlMap, ok := asMap(pbomlRaw)
	if !ok {
		v.acc.add(ctx("field", "pboml"), "field \"pboml\" must be a mapping")
	} else {
		verRaw, present := mapGet(pbomlMap, "version")
		ver, isStr := asText(verRaw)
		switch {
		case !present:
			v.acc.add(ctx("field", "pboml.version"), "field \"pboml.version\" is missing")
		case !isStr || !supportedVersions[ver]:
			v.acc.addf(ctx("field", "pboml.version", "version", ver),
				"unsupported pboml version %q", ver)
		}
	}

	slicesRaw, _ := mapGet(root, "slices")
	slices, ok := asSlice(slicesRaw)
	switch {
	case !ok:
		v.acc.add(ctx("field", "slices"), "field \"slices\" must be a sequence")
	case len(slices) == 0:
		v.acc.add(ctx("field", "slices"), "field \"slices\" must not be empty")
	default:
		for i, s := range slices {
			sm, isMap := asMap(s)
			if !isMap {
				v.acc.addf(ctx("field", "slices", "index", itoa(i)), "slice %d must be a mapping", i)
				continue
			}
			typRaw, present := mapGet(sm, "type")
			typ, isStr := asString(typRaw)
			if !present || !isStr || strings.TrimSpace(typ) == "" {
				v.acc.addf(ctx("field", "slices", "index", itoa(i)), "slice %d is missing its type", i)
			}
		}
	}

	return v.acc.empty()
}

// ---------------------------------------------------------------------------
// Document metadata
// ---------------------------------------------------------------------------

// metadataValidator checks the optional document block. Strict mode
// additionally requires id, title, and release_date, and rejects future
// release dates.
type metadataValidator struct {
	strict bool
	now    func() time.Time
	acc    errorAccumulator
}

func newMetadataValidator(strict bool) *metadataValidator {
	return &metadataValidator{strict: strict, now: time.Now}
}

func (v *metadataValidator) errors() []FieldError { return v.acc.findings }

func (v *metadataValidator) validate(node any) bool {
	m, ok := asMap(node)
	if !ok {
		v.acc.add(ctx("field", "document"), "field \"document\" must be a mapping")
		return false
	}

	for _, key := range mapKeys(m) {
		if !metadataKeys[key] {
			v.acc.addf(ctx("field", "document", "key", key), "unknown metadata field %q", key)
		}
	}

	if raw, present := mapGet(m, "id"); present {
		id, isStr := asString(raw)
		if !isStr || !metadataIDPattern.MatchString(id) {
			v.acc.addf(ctx("field", "document.id"), "field \"document.id\" must match %s", metadataIDPattern)
		}
	} else if v.strict {
		v.acc.add(ctx("field", "document.id"), "field \"document.id\" is required in strict mode")
	}

	for _, field := range []string{"title", "type", "copyright"} {
		raw, present := mapGet(m, field)
		if !present {
			if v.strict && field == "title" {
				v.acc.add(ctx("field", "document.title"), "field \"document.title\" is required in strict mode")
			}
			continue
		}
		checkLocalized(raw, "document."+field, &v.acc)
	}

	if raw, present := mapGet(m, "release_date"); present {
		date, err := coerceDate(raw)
		switch {
		case err != nil:
			v.acc.add(ctx("field", "document.release_date"), "field \"document.release_date\" is not a parseable date")
		case v.strict && date.After(v.now()):
			v.acc.add(ctx("field", "document.release_date"), "field \"document.release_date\" must not be in the future")
		}
	} else if v.strict {
		v.acc.add(ctx("field", "document.release_date"), "field \"document.release_date\" is required in strict mode")
	}

	if raw, present := mapGet(m, "form"); present {
		form, isStr := asString(raw)
		if !isStr || !metadataFormPattern.MatchString(form) {
			v.acc.addf(ctx("field", "document.form"), "field \"document.form\" must match %s", metadataFormPattern)
		}
	}

	if raw, present := mapGet(m, "url"); present {
		if _, isStr := asString(raw); !isStr {
			v.acc.add(ctx("field", "document.url"), "field \"document.url\" must be a string")
		}
	}

	return v.acc.empty()
}

// ---------------------------------------------------------------------------
// Annotations
// ---------------------------------------------------------------------------

// annotationValidator checks one annotation entry. ID uniqueness across the
// whole document is enforced by the parser, which owns the full sequence.
type annotationValidator struct {
	acc errorAccumulator
}

func (v *annotationValidator) errors() []FieldError { return v.acc.findings }

func (v *annotationValidator) validate(node any) bool {
	m, ok := asMap(node)
	if !ok {
		v.acc.add(ctx("field", "annotations"), "annotation must be a mapping")
		return false
	}

	idRaw, present := mapGet(m, "id")
	id, _ := asText(idRaw)
	if !present || strings.TrimSpace(id) == "" {
		v.acc.add(ctx("field", "annotations.id"), "annotation is missing its id")
	}

	ctRaw, _ := mapGet(m, "content_type")
	contentType, _ := asString(ctRaw)
	if contentType != string(AnnotationMarkdown) && contentType != string(AnnotationBibtex) {
		v.acc.addf(ctx("field", "annotations.content_type", "annotation", id),
			"annotation %q has unsupported content_type %q", id, contentType)
		return false
	}

	contentRaw, present := mapGet(m, "content")
	if !present {
		v.acc.addf(ctx("field", "annotations.content", "annotation", id), "annotation %q is missing content", id)
		return false
	}
	content, ok := checkLocalized(contentRaw, "annotations.content", &v.acc)
	if !ok {
		return false
	}

	if contentType == string(AnnotationBibtex) {
		for _, loc := range Locales {
			if !bibtexEntryPattern.MatchString(content.Get(loc)) {
				v.acc.addf(ctx("field", "annotations.content", "annotation", id, "locale", string(loc)),
					"annotation %q content is not a bibtex entry for locale %q", id, loc)
			}
		}
	}

	return v.acc.empty()
}

// coerceDate accepts the date shapes the YAML decoder produces: native
// timestamps and common date strings.
func coerceDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d, nil
	case string:
		for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, d); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, errUnparseableDate
}

var errUnparseableDate = errors.New("unparseable date")

func itoa(i int) string { return strconv.Itoa(i) }
