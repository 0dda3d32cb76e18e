package pboml

import (
	"fmt"
	"regexp"
)

// Validator contract shared by the root, metadata, annotation, and per-slice
// validators. Validate reports whether node conforms; findings accumulate on
// the validator and are queryable afterwards. Validators return false on the
// first violating object but gather every finding for that object first.
type validator interface {
	validate(node any) bool
	errors() []FieldError
}

// errorAccumulator gathers structured findings for one validated object.
// Each validator owns its accumulator; there is no shared state across
// calls.
type errorAccumulator struct {
	findings []FieldError
}

func (a *errorAccumulator) addf(context map[string]string, format string, args ...any) {
	a.findings = append(a.findings, FieldError{
		Message: fmt.Sprintf(format, args...),
		Context: context,
	})
}

func (a *errorAccumulator) add(context map[string]string, message string) {
	a.findings = append(a.findings, FieldError{Message: message, Context: context})
}

func (a *errorAccumulator) empty() bool { return len(a.findings) == 0 }

// ctx builds a context map from alternating key/value pairs.
func ctx(pairs ...string) map[string]string {
	m := make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		m[pairs[i]] = pairs[i+1]
	}
	return m
}

// validationError wraps accumulated findings into the public error type.
func validationError(docID string, findings []FieldError) error {
	return &ValidationError{DocumentID: docID, Errors: findings}
}

// ---------------------------------------------------------------------------
// Dangerous-markup screening
// ---------------------------------------------------------------------------

// Pattern-based screening of authored text. This is a documented best-effort
// filter, not a security boundary.
var dangerousPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"script tag", regexp.MustCompile(`(?is)<script\b`)},
	{"event handler", regexp.MustCompile(`(?i)\son\w+\s*=`)},
	{"iframe tag", regexp.MustCompile(`(?is)<iframe\b`)},
	{"javascript protocol", regexp.MustCompile(`(?i)javascript\s*:`)},
	{"data html payload", regexp.MustCompile(`(?i)data\s*:\s*text/html`)},
	{"vbscript protocol", regexp.MustCompile(`(?i)vbscript\s*:`)},
}

// findDangerousMarkup returns the name of the first dangerous pattern found
// in s, or "" when s is clean.
func findDangerousMarkup(s string) string {
	for _, p := range dangerousPatterns {
		if p.re.MatchString(s) {
			return p.name
		}
	}
	return ""
}

// checkLocalizedSafe runs the locale invariant plus dangerous-markup
// screening on every locale value.
func checkLocalizedSafe(v any, field string, acc *errorAccumulator) (LocalizedString, bool) {
	ls, ok := checkLocalized(v, field, acc)
	if !ok {
		return nil, false
	}
	clean := true
	for _, loc := range Locales {
		if hit := findDangerousMarkup(ls.Get(loc)); hit != "" {
			acc.addf(ctx("field", field, "locale", string(loc), "pattern", hit),
				"field %q contains disallowed markup (%s) for locale %q", field, hit, loc)
			clean = false
		}
	}
	if !clean {
		return nil, false
	}
	return ls, true
}

// optionalLocalized validates a localized field only when present.
func optionalLocalized(node any, field string, acc *errorAccumulator) (LocalizedString, bool) {
	raw, present := mapGetAny(node, field)
	if !present || raw == nil {
		return nil, true
	}
	return checkLocalized(raw, field, acc)
}

// mapGetAny is mapGet over an undecoded node.
func mapGetAny(node any, field string) (any, bool) {
	m, ok := asMap(node)
	if !ok {
		return nil, false
	}
	return mapGet(m, field)
}
