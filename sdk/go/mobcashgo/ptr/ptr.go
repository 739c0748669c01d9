// Package ptr provides small helpers for the optional (nullable) fields carried
// by the back-office API payloads.
package ptr

import "strings"

// To returns a pointer to the given value.
//
// Example:
//
//	order := ptr.To(3)
//	city := ptr.To("Cotonou")
func To[T any](v T) *T {
	return &v
}

// FromPtr dereferences p, returning the zero value if p is nil.
func FromPtr[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// NonBlank returns nil when s is empty or only whitespace, otherwise a pointer to s.
// The API treats an absent optional string and null the same way, so forms use this
// to turn an empty input into "no value".
func NonBlank(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// IsBlank reports whether p is nil or points to a whitespace-only string.
func IsBlank(p *string) bool {
	return p == nil || strings.TrimSpace(*p) == ""
}
