package pboml

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-yaml"
)

// Raw-node accessors over the ordered YAML tree. Documents decode with
// ordered mappings (yaml.MapSlice) because mapping order is significant:
// table variable order drives pivot row order, kvlist pair order drives
// list order.

// mapItems is the ordered mapping shape the rest of the package works with.
type mapItems = yaml.MapSlice

// asMap returns v as an ordered mapping.
func asMap(v any) (yaml.MapSlice, bool) {
	switch m := v.(type) {
	case yaml.MapSlice:
		return m, true
	case map[string]any:
		// Tolerate unordered maps from callers that decoded without
		// ordering; key order is then unspecified.
		ms := make(yaml.MapSlice, 0, len(m))
		for k, val := range m {
			ms = append(ms, yaml.MapItem{Key: k, Value: val})
		}
		return ms, true
	default:
		return nil, false
	}
}

// mapGet looks up key in an ordered mapping.
func mapGet(m yaml.MapSlice, key string) (any, bool) {
	for _, item := range m {
		if keyString(item.Key) == key {
			return item.Value, true
		}
	}
	return nil, false
}

// mapHas reports whether key is present, regardless of its value.
func mapHas(m yaml.MapSlice, key string) bool {
	_, ok := mapGet(m, key)
	return ok
}

// mapKeys returns every key in document order.
func mapKeys(m yaml.MapSlice) []string {
	keys := make([]string, 0, len(m))
	for _, item := range m {
		keys = append(keys, keyString(item.Key))
	}
	return keys
}

// keyString renders a mapping key as text. YAML permits non-string keys
// (bare numbers in thumbnail density keys, for example).
func keyString(k any) string {
	switch v := k.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// asString returns v as text when it is a string scalar.
func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// asText stringifies any scalar. Numeric scalars render in their shortest
// decimal form so "2024" does not become "2024.000000".
func asText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	default:
		return "", false
	}
}

// asBool returns v as a boolean scalar.
func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// asInt returns v as an integer when it decoded as one (goccy decodes
// unquoted integers as int or uint64 depending on magnitude).
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// asFloat returns v as a numeric scalar.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// asSlice returns v as a sequence.
func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}
