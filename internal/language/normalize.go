// Package language normalizes the locale codes accepted from callers,
// configuration and command-line flags.
package language

import (
	"strings"
	"unicode"
)

// NormalizeTag lowercases a tag and joins its subtags with "-". Underscores
// are accepted as separators. Blank or non-alphabetic input yields "".
func NormalizeTag(raw string) string {
	subtags := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(raw)), func(r rune) bool {
		return r == '-' || r == '_'
	})
	if len(subtags) == 0 {
		return ""
	}
	for _, subtag := range subtags {
		if !isASCIILetters(subtag) {
			return ""
		}
	}
	return strings.Join(subtags, "-")
}

// NormalizeCode returns the primary subtag, "en" for "en-US".
func NormalizeCode(raw string) string {
	tag := NormalizeTag(raw)
	primary, _, _ := strings.Cut(tag, "-")
	return primary
}

// SplitList splits a comma or whitespace separated list such as "es, fr de".
// Order and repeats are kept; entries are not validated.
func SplitList(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

func isASCIILetters(value string) bool {
	for _, r := range value {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
