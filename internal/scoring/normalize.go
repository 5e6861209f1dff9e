// Package scoring grades free-text answers against a reference answer by
// lexical similarity.
package scoring

import (
	"strings"
	"unicode"
)

// Normalize lowercases text, drops everything except ASCII letters, digits and
// whitespace, and collapses whitespace runs to a single space. Values that are
// not strings normalize to "".
func Normalize(text any) string {
	s, ok := text.(string)
	if !ok {
		return ""
	}
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case unicode.IsSpace(r):
			return ' '
		}
		return -1
	}, strings.ToLower(s))
	return strings.Join(strings.Fields(s), " ")
}
