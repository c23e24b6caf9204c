package scrub

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	stripMarks    = runes.Remove(runes.In(unicode.Mn))
	stripNonASCII = runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	}))
)

// decomposeUnicode applies NFKD so that composed characters split into a
// base character plus combining marks, and compatibility forms (ligatures,
// full-width variants) collapse to their plain equivalents.
func decomposeUnicode(text string) string {
	return norm.NFKD.String(text)
}

// removeCombining drops nonspacing marks left behind by decomposition,
// turning "café" into "cafe".
func removeCombining(text string) string {
	out, _, err := transform.String(stripMarks, text)
	if err != nil {
		return text
	}
	return out
}

// removeNonASCII drops every remaining rune above 0x7F. This runs last in
// the pipeline so mapped characters have already been replaced.
func removeNonASCII(text string) string {
	out, _, err := transform.String(stripNonASCII, text)
	if err != nil {
		return text
	}
	return out
}
