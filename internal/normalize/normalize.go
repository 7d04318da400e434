// Package normalize converts locale-formatted request payloads into values
// safe to bind as SQL parameters. Comma decimal separators become periods,
// numeric strings become numbers and blank strings become nulls.
package normalize

import (
	"strconv"
	"strings"
)

// Value normalizes a single decoded JSON value. It is pure and idempotent:
// normalizing an already-normalized value returns the same value, and an
// unparseable numeric-looking string passes through unchanged.
func Value(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return normalizeString(t)
	case map[string]any:
		return Record(t)
	case []any:
		return Slice(t)
	default:
		return v
	}
}

// Record normalizes every value of a payload object.
func Record(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Value(v)
	}
	return out
}

// Slice normalizes every element of a payload array.
func Slice(s []any) []any {
	if s == nil {
		return nil
	}
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = Value(v)
	}
	return out
}

// Number applies the scalar rules to a string: blank becomes nil, a
// comma-decimal or plain numeric string becomes a float64, anything else
// is returned as-is.
func Number(s string) any {
	return normalizeString(s)
}

func normalizeString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if strings.Contains(s, ",") {
		candidate := strings.ReplaceAll(s, ",", ".")
		if f, err := strconv.ParseFloat(strings.TrimSpace(candidate), 64); err == nil {
			return f
		}
		return s
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return f
	}
	return s
}
