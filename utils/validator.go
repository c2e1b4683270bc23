// utils/validator.go - Input validation
package utils

import "strings"

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	// Remove leading/trailing spaces
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	return input
}

// SanitizeComment normalizes a free-text comment field: trimmed, with an
// empty result collapsing to nil so the column stays NULL instead of "".
func SanitizeComment(input *string) *string {
	if input == nil {
		return nil
	}
	cleaned := SanitizeInput(*input)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
