package pboml

import "strings"

// Locale identifies one of the two publication languages.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleFR Locale = "fr"
)

// Locales lists the supported locales in render order. English renders first.
var Locales = []Locale{LocaleEN, LocaleFR}

// LocalizedString carries one value per supported locale. A valid
// LocalizedString has exactly the keys "en" and "fr", both trimmed non-empty.
type LocalizedString map[Locale]string

// Get returns the value for loc, or the empty string when absent.
func (ls LocalizedString) Get(loc Locale) string { return ls[loc] }

// IsZero reports whether no locale carries a value.
func (ls LocalizedString) IsZero() bool { return len(ls) == 0 }

// uniformLocalized duplicates a single plain string across both locales.
// Some authoring shortcuts (referenced_as, array-table labels) accept a bare
// string where a localized mapping is also allowed.
func uniformLocalized(s string) LocalizedString {
	return LocalizedString{LocaleEN: s, LocaleFR: s}
}

// checkLocalized enforces the locale invariant on a decoded YAML value and
// returns the typed form. Each violation is appended to acc with field as
// context; ok is false when any violation was found.
func checkLocalized(v any, field string, acc *errorAccumulator) (LocalizedString, bool) {
	m, isMap := asMap(v)
	if !isMap {
		acc.addf(ctx("field", field), "field %q must be a localized mapping with keys en and fr", field)
		return nil, false
	}

	ls := make(LocalizedString, len(Locales))
	ok := true

	for _, loc := range Locales {
		raw, present := mapGet(m, string(loc))
		if !present {
			acc.addf(ctx("field", field, "locale", string(loc)), "field %q is missing locale %q", field, loc)
			ok = false
			continue
		}
		s, isStr := asString(raw)
		if !isStr || strings.TrimSpace(s) == "" {
			acc.addf(ctx("field", field, "locale", string(loc)), "field %q has an empty value for locale %q", field, loc)
			ok = false
			continue
		}
		ls[loc] = s
	}

	for _, key := range mapKeys(m) {
		if key != string(LocaleEN) && key != string(LocaleFR) {
			acc.addf(ctx("field", field, "locale", key), "field %q carries unsupported locale %q", field, key)
			ok = false
		}
	}

	if !ok {
		return nil, false
	}
	return ls, true
}
