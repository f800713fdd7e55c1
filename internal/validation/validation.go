// Package validation contains input normalization and validation helpers.
package validation

import "strings"

// MaxKeywordLength is the longest keyword accepted for a news search.
const MaxKeywordLength = 255

// NormalizeKeyword trims surrounding whitespace from a keyword. Keyword
// comparison elsewhere is case-insensitive, so case is preserved for display.
func NormalizeKeyword(keyword string) string {
	return strings.TrimSpace(keyword)
}

// ValidateKeyword checks that a normalized keyword is non-empty and within
// the length limit.
func ValidateKeyword(keyword string) (bool, string) {
	if keyword == "" {
		return false, "keyword is required"
	}
	if len(keyword) > MaxKeywordLength {
		return false, "keyword must be at most 255 characters"
	}
	return true, ""
}
