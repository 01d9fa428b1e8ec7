package security

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText strips markup and control characters from free text
// submitted through a form and trims the surrounding space.
func SanitizeText(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
	s = strictPolicy.Sanitize(s)
	// StrictPolicy escapes what it keeps; undo the entities it introduces
	// since the value is escaped again when rendered.
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}

// SanitizeForSpreadsheet prefixes values a spreadsheet would evaluate as a
// formula.
func SanitizeForSpreadsheet(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
