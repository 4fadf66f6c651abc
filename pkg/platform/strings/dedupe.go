// Package strings provides string clean-up helpers for request normalization.
package strings

import (
	"strings"
)

// TrimStrings trims each pointed-to string in place.
func TrimStrings(ss ...*string) {
	for _, s := range ss {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
}

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
func DedupeAndTrim(values []string) []string {
	return dedupe(values, strings.TrimSpace)
}

// DedupeAndTrimLower is like DedupeAndTrim but also lowercases each element.
//
//	DedupeAndTrimLower([]string{" Farmer", "farmer", "STUDENT"})
//	// []string{"farmer", "student"}
func DedupeAndTrimLower(values []string) []string {
	return dedupe(values, func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
}

func dedupe(values []string, clean func(string) string) []string {
	if values == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		c := clean(v)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		result = append(result, c)
	}
	return result
}

// TrimSpacePtr trims an optional string. Nil stays nil.
func TrimSpacePtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}

// DedupeAndTrimLowerPtr applies DedupeAndTrimLower to an optional slice.
func DedupeAndTrimLowerPtr(values *[]string) *[]string {
	if values == nil {
		return nil
	}
	result := DedupeAndTrimLower(*values)
	return &result
}
