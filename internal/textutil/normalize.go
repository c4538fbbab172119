package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize lowercases text, drops every rune that is not a letter, digit,
// or whitespace, and collapses runs of whitespace into single spaces.
// The result is trimmed. Normalize is idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	// Casers carry state and must not be shared across goroutines.
	lowered := cases.Lower(language.Und).String(text)

	var builder strings.Builder
	builder.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			builder.WriteRune(r)
		case unicode.IsSpace(r):
			builder.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(builder.String()), " ")
}

// TokenSet splits the normalized form of text on whitespace and returns the
// distinct tokens. Returns an empty set for text without letters or digits.
func TokenSet(text string) map[string]struct{} {
	fields := strings.Fields(Normalize(text))
	set := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		set[field] = struct{}{}
	}
	return set
}
