/*
Package duration implements the duration constraint: a small grammar of
"<count><unit letter>" groups resolved to integer milliseconds.

PURPOSE:
  Users type durations the way they say them: "8w20m", "1d 4h", "3d2d".
  The constraint resolves them to milliseconds through a conversion chain
  that depends on the calendar in use (a work week has 5 days of 8 hours),
  and formats milliseconds back with localized unit letters.

KEY CONCEPTS:
  - Unit: weeks, days, hours, minutes, seconds, ordered largest first
  - ConversionTable: unit -> milliseconds, folded over the fixed chain
  - LetterMap: unit -> display letter; canonical "w d h m s" or localized
  - Grammar: validation, parsing and formatting over both alphabets

EXAMPLE:
  Work calendar, "8w20m":
    8 * (5 * 8 * 60 * 60 * 1000) + 20 * 60 * 1000 = 577_200_000 ms

SEE ALSO:
  - config.go: calendar types and conversion overrides
  - grammar.go: tokenizer and formatter
  - value.go: generic.Value implementation
*/
package duration

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/warp/value-engine/generic"
)

// =============================================================================
// UNITS
// =============================================================================

// Unit identifies one link of the conversion chain.
type Unit string

const (
	Weeks   Unit = "weeks"
	Days    Unit = "days"
	Hours   Unit = "hours"
	Minutes Unit = "minutes"
	Seconds Unit = "seconds"
)

const numUnits = 5

var chain = [numUnits]Unit{Weeks, Days, Hours, Minutes, Seconds}

func (u Unit) index() int {
	for i, c := range chain {
		if c == u {
			return i
		}
	}
	return -1
}

// IsValid reports whether u is one of the five units.
func (u Unit) IsValid() bool { return u.index() >= 0 }

// Descendant returns the next smaller unit. Seconds has none.
func (u Unit) Descendant() (Unit, bool) {
	i := u.index()
	if i < 0 || i == numUnits-1 {
		return "", false
	}
	return chain[i+1], true
}

// =============================================================================
// LETTER MAPS
// =============================================================================

// LetterFunc looks up the display letter of a unit, typically a translation.
type LetterFunc func(Unit) string

// LetterMap assigns one lower-case letter to each unit.
type LetterMap struct {
	letters [numUnits]rune
}

// CanonicalLetters is the global alphabet: w d h m s.
var CanonicalLetters = LetterMap{letters: [numUnits]rune{'w', 'd', 'h', 'm', 's'}}

// Letter returns the letter of u, or 0 for an unknown unit.
func (m LetterMap) Letter(u Unit) rune {
	i := u.index()
	if i < 0 {
		return 0
	}
	return m.letters[i]
}

// Unit resolves a letter back to its unit.
func (m LetterMap) Unit(r rune) (Unit, bool) {
	for i, l := range m.letters {
		if l == r {
			return chain[i], true
		}
	}
	return "", false
}

// Has reports whether r is a letter of this alphabet.
func (m LetterMap) Has(r rune) bool {
	_, ok := m.Unit(r)
	return ok
}

// NewLetterMap builds a native alphabet from a lookup function. Units the
// function leaves blank keep their canonical letter.
//
// The result is rejected when two units share a letter, or when a native
// letter is the canonical letter of a different unit: "1s" must not mean
// one second in one alphabet and one week in the other.
func NewLetterMap(fn LetterFunc) (LetterMap, error) {
	m := CanonicalLetters
	if fn == nil {
		return m, nil
	}
	for i, u := range chain {
		s := strings.ToLower(strings.TrimSpace(fn(u)))
		if s == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(s)
		if size != len(s) || !unicode.IsLetter(r) {
			return LetterMap{}, letterError(u, generic.ErrInvalidUnitLetter)
		}
		m.letters[i] = r
	}

	for i, r := range m.letters {
		for j := i + 1; j < numUnits; j++ {
			if m.letters[j] == r {
				return LetterMap{}, letterError(chain[j], generic.ErrAmbiguousUnitLetter)
			}
		}
		if cu, ok := CanonicalLetters.Unit(r); ok && cu != chain[i] {
			return LetterMap{}, letterError(chain[i], generic.ErrAmbiguousUnitLetter)
		}
	}
	return m, nil
}

// LettersFromMap builds a native alphabet from explicit letters.
func LettersFromMap(letters map[Unit]string) (LetterMap, error) {
	for u := range letters {
		if !u.IsValid() {
			return LetterMap{}, letterError(u, generic.ErrInvalidOption)
		}
	}
	return NewLetterMap(func(u Unit) string { return letters[u] })
}

func letterError(u Unit, err error) error {
	return &generic.ConfigError{Type: generic.ConstraintDuration, Field: "letters." + string(u), Err: err}
}
