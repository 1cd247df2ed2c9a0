package users

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes characters and drops the combining marks, so
// "Müller" folds to "Muller" before the username is assembled.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldName(name string) string {
	folded, _, err := transform.String(stripMarks, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// baseUsername builds the "first initial + surname" stem that the
// auto-username sequence appends its suffix to.
func baseUsername(forename, surname string) string {
	f := foldName(forename)
	s := foldName(surname)
	if f == "" {
		return s
	}
	return f[:1] + s
}
