package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MaxBaseLength caps the sanitized base, in runes.
const MaxBaseLength = 50

func isSep(r rune) bool { return r == '_' || r == '-' }

// Sanitize turns free text into a filename-safe base: lowercase letters, digits,
// '_' and '-', without leading, trailing or repeated separators.
func Sanitize(s string) string {
	s = strings.ToLower(norm.NFC.String(s))

	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
		case isSep(r):
		default:
			// пробелы и всё прочее превращаются в '_'
			r = '_'
		}
		if isSep(r) && isSep(prev) {
			continue
		}
		b.WriteRune(r)
		prev = r
	}

	out := []rune(strings.TrimFunc(b.String(), isSep))
	if len(out) > MaxBaseLength {
		out = out[:MaxBaseLength]
	}
	return strings.TrimRightFunc(string(out), isSep)
}
