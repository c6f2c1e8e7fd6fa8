package generic

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeFunc folds text for case- and diacritic-insensitive matching.
type NormalizeFunc func(string) string

// FoldText removes combining marks and case-folds: "Žluťoučký" -> "zlutoucky".
// Transformers carry state, so a fresh chain is built per call.
func FoldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(out)
}

// MeetFullTexts reports whether text contains every needle as a folded
// substring. No needles matches everything.
func MeetFullTexts(text string, needles []string, normalize NormalizeFunc) bool {
	if normalize == nil {
		normalize = FoldText
	}
	haystack := normalize(text)
	for _, needle := range needles {
		if !strings.Contains(haystack, normalize(strings.TrimSpace(needle))) {
			return false
		}
	}
	return true
}
