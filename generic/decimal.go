/*
decimal.go - Decimal-scaled value engine

PURPOSE:
  Shared parsing and normalization for values whose canonical form is an
  arbitrary-precision decimal (number, percentage). Floating point is never
  used for the canonical form; SafeFloat is the only exit and it reports
  whether the conversion was exact.

RULES:
  - Input is trimmed; inner spaces ("1 000") are ignored.
  - A single comma with no dot is a decimal separator ("1,5" == "1.5").
  - "66.66%" is a percentage literal: the exponent is shifted by -2.
  - Rounding is half away from zero (decimal.Round), the usual "half-up".
  - TrimTrailingZeros strips zero digits from the coefficient without
    changing the value, so 0.670 and 0.67 serialize identically.
  - Exponents beyond +/-MaxExponent are rejected: "1e5000000" is nine bytes
    of input but five million digits once formatted or rounded.
*/
package generic

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxExponent bounds the decimal exponent of any parsed or stored number.
const MaxExponent = 1000

// MaxDecimals caps the configured number of displayed fractional digits.
const MaxDecimals = 20

// InBounds reports whether d's exponent is within +/-MaxExponent.
func InBounds(d decimal.Decimal) bool {
	e := d.Exponent()
	return e >= -MaxExponent && e <= MaxExponent
}

// ParseDecimal parses user-facing decimal text.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return decimal.Zero, false
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !InBounds(d) {
		return decimal.Zero, false
	}
	return d, true
}

// ParsePercentage parses percentage text into a fraction: "50%" -> 0.5.
// Text without a % suffix is already a fraction: "0.5" -> 0.5.
func ParsePercentage(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutSuffix(s, "%"); ok {
		d, ok := ParseDecimal(rest)
		if !ok {
			return decimal.Zero, false
		}
		return d.Shift(-2), true
	}
	return ParseDecimal(s)
}

// RoundHalfUp rounds to places fractional digits, ties away from zero.
func RoundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

var ten = big.NewInt(10)

// TrimTrailingZeros normalizes the coefficient: 0.6700 (6700e-4) becomes 67e-2.
// Integer coefficients are left alone so 100 stays 100e0.
func TrimTrailingZeros(d decimal.Decimal) decimal.Decimal {
	coef := d.Coefficient()
	exp := d.Exponent()
	if coef.Sign() == 0 {
		return decimal.Zero
	}
	q, m := new(big.Int), new(big.Int)
	for exp < 0 {
		q.QuoRem(coef, ten, m)
		if m.Sign() != 0 {
			break
		}
		coef.Set(q)
		exp++
	}
	return decimal.NewFromBigInt(coef, exp)
}

// Normalize rounds to places (when places >= 0) and trims trailing zeros.
func Normalize(d decimal.Decimal, places int32) decimal.Decimal {
	if places >= 0 {
		d = RoundHalfUp(d, places)
	}
	return TrimTrailingZeros(d)
}

// SafeFloat converts d to float64 and reports whether no precision was lost.
func SafeFloat(d decimal.Decimal) (float64, bool) {
	return d.Float64()
}

// DecimalOf extracts a decimal from a raw number or numeric text.
func DecimalOf(r Raw) (decimal.Decimal, bool) {
	switch r.Kind() {
	case RawNumber:
		return r.number, InBounds(r.number)
	case RawText:
		return ParseDecimal(r.text)
	default:
		return decimal.Zero, false
	}
}
