package pboml

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for library operations.
var (
	ErrEmptyDocument        = errors.New("document text cannot be empty")
	ErrUnsupportedSliceType = errors.New("unsupported slice type")
)

// FieldError is one structured validation finding: a human-readable message
// plus the context map identifying where in the document it was found.
type FieldError struct {
	Message string
	Context map[string]string
}

func (e FieldError) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	pairs := make([]string, 0, len(e.Context))
	for k, v := range e.Context {
		pairs = append(pairs, k+"="+v)
	}
	return e.Message + " (" + strings.Join(pairs, ", ") + ")"
}

// ParseError reports malformed YAML input. Line is 1-based; 0 means the
// decoder reported no position.
type ParseError struct {
	Line    int
	Snippet string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("pboml: parse error at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("pboml: parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError aggregates every schema violation found on one object
// before the pipeline stops.
type ValidationError struct {
	DocumentID string
	Errors     []FieldError
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("pboml: validation failed")
	if e.DocumentID != "" {
		b.WriteString(" for document ")
		b.WriteString(e.DocumentID)
	}
	fmt.Fprintf(&b, " (%d error", len(e.Errors))
	if len(e.Errors) != 1 {
		b.WriteByte('s')
	}
	b.WriteByte(')')
	for _, fe := range e.Errors {
		b.WriteString(": ")
		b.WriteString(fe.Error())
	}
	return b.String()
}

// Messages returns the bare message of every sub-error, in order.
func (e *ValidationError) Messages() []string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Message
	}
	return msgs
}

// ProcessingError reports a slice that passed validation but could not be
// normalized into its canonical form.
type ProcessingError struct {
	SliceType SliceKind
	Stage     string
	Err       error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("pboml: processing %s slice failed at %s: %v", e.SliceType, e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// RenderError reports a renderer failure, preserving the underlying cause.
type RenderError struct {
	SliceType SliceKind
	SliceID   string
	Err       error
}

func (e *RenderError) Error() string {
	if e.SliceID != "" {
		return fmt.Sprintf("pboml: rendering %s slice %q failed: %v", e.SliceType, e.SliceID, e.Err)
	}
	return fmt.Sprintf("pboml: rendering %s slice failed: %v", e.SliceType, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// EncodingError reports input text that cannot be normalized to valid,
// locale-correct text.
type EncodingError struct {
	Locale Locale
	Err    error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("pboml: encoding failure for locale %s: %v", e.Locale, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }
