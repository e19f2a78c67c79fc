package models

import (
	"strings"
	"unicode"
)

// SanitizeText trims whitespace and removes control characters other than
// newline and tab.
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	sanitized.Grow(len(text))
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	// Removing a control rune can expose surrounding whitespace
	return strings.TrimSpace(sanitized.String())
}

// sanitizeOptional applies SanitizeText to a patch field when present.
func sanitizeOptional(p *string) *string {
	if p == nil {
		return nil
	}
	s := SanitizeText(*p)
	return &s
}
