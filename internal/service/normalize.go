package service

import (
	"strings"
	"unicode"
)

// NormalizeContact strips every Unicode space and hyphen so that
// "050-123 4567" and "0501234567" identify the same customer.  Case is
// kept.
func NormalizeContact(v string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, v)
}

// sameName compares customer names ignoring surrounding whitespace and
// letter case.
func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
