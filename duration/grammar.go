package duration

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// =============================================================================
// GRAMMAR - "<digits?><letter>" groups over two alphabets
// =============================================================================

// Grammar validates, parses and formats duration strings for one constraint.
//
// A string is a sequence of groups, each an optional count followed by a
// unit letter; a missing count means 1. Whitespace is ignored and repeated
// units are summed: "2w3d4mww4d9wms" is 13w 7d 5m 1s. Letters come from the
// canonical alphabet or the native one, never both in one string. A string
// of digits only is already a millisecond count.
type Grammar struct {
	table  ConversionTable
	native LetterMap

	globalTokens *regexp.Regexp
	nativeTokens *regexp.Regexp
}

var maxMillis = decimal.NewFromInt(math.MaxInt64)

// NewGrammar compiles the tokenizers for both alphabets.
func NewGrammar(table ConversionTable, native LetterMap) *Grammar {
	return &Grammar{
		table:        table,
		native:       native,
		globalTokens: tokenizer(CanonicalLetters),
		nativeTokens: tokenizer(native),
	}
}

func tokenizer(m LetterMap) *regexp.Regexp {
	var class strings.Builder
	for _, r := range m.letters {
		class.WriteRune(r)
	}
	return regexp.MustCompile(`(\d*)([` + class.String() + `])`)
}

func (g *Grammar) Table() ConversionTable { return g.table }

// IsValid reports whether s is a digit-only count or uses a single alphabet.
func (g *Grammar) IsValid(s string) bool {
	s = compact(s)
	if s == "" {
		return false
	}
	if isDigits(s) {
		return true
	}
	return usesOnly(s, CanonicalLetters) || usesOnly(s, g.native)
}

// ParseMillis resolves s to milliseconds. Invalid input, and totals that
// don't fit in int64, return (0, false).
func (g *Grammar) ParseMillis(s string) (int64, bool) {
	s = compact(s)
	if s == "" {
		return 0, false
	}
	if isDigits(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}

	var (
		tokens  *regexp.Regexp
		letters LetterMap
	)
	switch {
	case usesOnly(s, g.native):
		tokens, letters = g.nativeTokens, g.native
	case usesOnly(s, CanonicalLetters):
		tokens, letters = g.globalTokens, CanonicalLetters
	default:
		return 0, false
	}

	total := decimal.Zero
	for _, m := range tokens.FindAllStringSubmatch(s, -1) {
		count := decimal.NewFromInt(1)
		if m[1] != "" {
			d, err := decimal.NewFromString(m[1])
			if err != nil {
				return 0, false
			}
			count = d
		}
		r, _ := utf8.DecodeRuneInString(m[2])
		unit, _ := letters.Unit(r)
		total = total.Add(count.Mul(decimal.NewFromInt(g.table.Millis(unit))))
		if total.GreaterThan(maxMillis) {
			return 0, false
		}
	}
	return total.IntPart(), true
}

// group is one "<count><unit>" piece of a formatted duration.
type group struct {
	unit  Unit
	count uint64
}

// decompose splits ms greedily, from maxUnit down to seconds. The
// sub-second remainder is dropped.
func (g *Grammar) decompose(ms uint64, maxUnit Unit) []group {
	start := maxUnit.index()
	if start < 0 {
		start = 0
	}
	var groups []group
	rest := ms
	for _, u := range chain[start:] {
		size := uint64(g.table.Millis(u))
		if n := rest / size; n > 0 {
			groups = append(groups, group{unit: u, count: n})
			rest %= size
		}
	}
	return groups
}

// FormatMillis renders ms with native letters, largest unit first, starting
// at maxUnit. maxGroups > 0 keeps only the first maxGroups non-zero groups.
// Zero renders as "0" plus the seconds letter.
func (g *Grammar) FormatMillis(ms int64, maxUnit Unit, maxGroups int) string {
	// The magnitude is unsigned so math.MinInt64 has one.
	sign, mag := "", uint64(ms)
	if ms < 0 {
		sign, mag = "-", -mag
	}
	groups := g.decompose(mag, maxUnit)
	if len(groups) == 0 {
		return sign + "0" + string(g.native.Letter(Seconds))
	}
	if maxGroups > 0 && len(groups) > maxGroups {
		groups = groups[:maxGroups]
	}
	var b strings.Builder
	b.WriteString(sign)
	for _, gr := range groups {
		b.WriteString(strconv.FormatUint(gr.count, 10))
		b.WriteRune(g.native.Letter(gr.unit))
	}
	return b.String()
}

// compact drops all whitespace and lower-cases.
func compact(s string) string {
	return strings.ToLower(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s))
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func usesOnly(s string, m LetterMap) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			continue
		}
		if !m.Has(r) {
			return false
		}
	}
	return true
}
