/*
condition.go - Condition algebra for query predicates

PURPOSE:
  Evaluates a named condition (equals, ordering, set membership, emptiness,
  text search) against one value and zero or more operands. Variants reduce
  themselves to one of three shapes and delegate here:

    Orderable: canonical decimals   (number, percentage, duration)
    Set:       normalized keys      (user, select)
    Text:      folded strings       (text)

FAIL-SAFE:
  An unknown condition, or a condition that makes no sense for a category,
  evaluates to false. A filter that can't be evaluated excludes the row.

EMPTINESS:
  A value is empty when its raw form is null, whitespace-only text or a list
  with no non-blank items. Numeric zero is NOT empty, and neither is "0".

SEE ALSO:
  - value.go: Value.MeetCondition
  - fulltext.go: folding used by text conditions
*/
package generic

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CONDITION TYPES
// =============================================================================

type ConditionType string

const (
	CondEquals            ConditionType = "eq"
	CondNotEquals         ConditionType = "neq"
	CondGreaterThan       ConditionType = "gt"
	CondGreaterThanEquals ConditionType = "gte"
	CondLowerThan         ConditionType = "lt"
	CondLowerThanEquals   ConditionType = "lte"
	CondBetween           ConditionType = "between"
	CondNotBetween        ConditionType = "notBetween"
	CondIn                ConditionType = "in"
	CondHasSome           ConditionType = "hasSome"
	CondHasAll            ConditionType = "hasAll"
	CondHasNoneOf         ConditionType = "hasNoneOf"
	CondContains          ConditionType = "contains"
	CondNotContains       ConditionType = "notContains"
	CondStartsWith        ConditionType = "startsWith"
	CondEndsWith          ConditionType = "endsWith"
	CondIsEmpty           ConditionType = "empty"
	CondNotEmpty          ConditionType = "notEmpty"
)

var knownConditions = map[ConditionType]bool{
	CondEquals: true, CondNotEquals: true,
	CondGreaterThan: true, CondGreaterThanEquals: true,
	CondLowerThan: true, CondLowerThanEquals: true,
	CondBetween: true, CondNotBetween: true,
	CondIn: true, CondHasSome: true, CondHasAll: true, CondHasNoneOf: true,
	CondContains: true, CondNotContains: true, CondStartsWith: true, CondEndsWith: true,
	CondIsEmpty: true, CondNotEmpty: true,
}

// IsKnown reports whether c is one of the condition constants.
func (c ConditionType) IsKnown() bool { return knownConditions[c] }

// =============================================================================
// OPERANDS
// =============================================================================

type OperandKind string

const (
	OperandLiteral     OperandKind = "literal"
	OperandCurrentUser OperandKind = "currentUser" // resolved by the user variant
)

// Operand is one right-hand side of a condition.
type Operand struct {
	Kind  OperandKind `json:"type,omitempty"`
	Value Raw         `json:"value"`
}

func Literal(raw Raw) Operand { return Operand{Kind: OperandLiteral, Value: raw} }
func CurrentUserOperand() Operand {
	return Operand{Kind: OperandCurrentUser}
}

// =============================================================================
// EMPTINESS
// =============================================================================

// IsEmptyRaw reports whether the raw value counts as empty.
func IsEmptyRaw(r Raw) bool {
	switch r.Kind() {
	case RawNull:
		return true
	case RawText:
		return strings.TrimSpace(r.text) == ""
	case RawNumber:
		return false
	case RawList:
		return len(r.Items()) == 0
	}
	return true
}

// =============================================================================
// ORDERABLE CATEGORY
// =============================================================================

// Ordinal is the canonical decimal of an orderable value. Valid is false when
// the canonical form is absent; Empty mirrors IsEmptyRaw of the raw input.
type Ordinal struct {
	Value decimal.Decimal
	Valid bool
	Empty bool
}

// OrdinalOf reduces a value with an optional canonical decimal.
func OrdinalOf(d decimal.Decimal, valid bool, raw Raw) Ordinal {
	return Ordinal{Value: d, Valid: valid, Empty: IsEmptyRaw(raw)}
}

// MeetOrderable evaluates a condition over canonical decimals.
// between/notBetween take two inclusive bounds in either order.
func MeetOrderable(cond ConditionType, v Ordinal, operands []Ordinal) bool {
	first := Ordinal{Empty: true}
	if len(operands) > 0 {
		first = operands[0]
	}

	switch cond {
	case CondIsEmpty:
		return v.Empty
	case CondNotEmpty:
		return !v.Empty
	case CondEquals:
		return ordinalEqual(v, first)
	case CondNotEquals:
		return !ordinalEqual(v, first)
	case CondIn, CondHasSome:
		for _, op := range operands {
			if ordinalEqual(v, op) {
				return true
			}
		}
		return false
	case CondGreaterThan:
		return v.Valid && first.Valid && v.Value.GreaterThan(first.Value)
	case CondGreaterThanEquals:
		return v.Valid && first.Valid && v.Value.GreaterThanOrEqual(first.Value)
	case CondLowerThan:
		return v.Valid && first.Valid && v.Value.LessThan(first.Value)
	case CondLowerThanEquals:
		return v.Valid && first.Valid && v.Value.LessThanOrEqual(first.Value)
	case CondBetween, CondNotBetween:
		if !v.Valid || len(operands) < 2 || !operands[0].Valid || !operands[1].Valid {
			return false
		}
		lo, hi := operands[0].Value, operands[1].Value
		if lo.GreaterThan(hi) {
			lo, hi = hi, lo
		}
		inside := v.Value.GreaterThanOrEqual(lo) && v.Value.LessThanOrEqual(hi)
		if cond == CondBetween {
			return inside
		}
		return !inside
	default:
		return false
	}
}

func ordinalEqual(a, b Ordinal) bool {
	switch {
	case a.Valid && b.Valid:
		return a.Value.Equal(b.Value)
	case !a.Valid && !b.Valid:
		return a.Empty && b.Empty
	default:
		return false
	}
}

// =============================================================================
// SET CATEGORY
// =============================================================================

// MeetSet evaluates a condition over sets of normalized keys.
// Callers normalize keys (e.g. lower-case emails) before calling.
func MeetSet(cond ConditionType, values, operands []string) bool {
	have := toSet(values)
	want := toSet(operands)

	switch cond {
	case CondIsEmpty:
		return len(have) == 0
	case CondNotEmpty:
		return len(have) > 0
	case CondHasSome, CondIn:
		return intersects(have, want)
	case CondHasNoneOf:
		return !intersects(have, want)
	case CondHasAll:
		for k := range want {
			if !have[k] {
				return false
			}
		}
		return true
	case CondEquals:
		return sameSet(have, want)
	case CondNotEquals:
		return !sameSet(have, want)
	default:
		return false
	}
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			set[s] = true
		}
	}
	return set
}

func intersects(a, b map[string]bool) bool {
	for k := range b {
		if a[k] {
			return true
		}
	}
	return false
}

func sameSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// =============================================================================
// TEXT CATEGORY
// =============================================================================

// MeetText evaluates a condition over folded strings. A nil normalize uses FoldText.
func MeetText(cond ConditionType, value string, empty bool, operands []string, normalize NormalizeFunc) bool {
	if normalize == nil {
		normalize = FoldText
	}
	v := normalize(strings.TrimSpace(value))
	first := ""
	if len(operands) > 0 {
		first = normalize(strings.TrimSpace(operands[0]))
	}

	switch cond {
	case CondIsEmpty:
		return empty
	case CondNotEmpty:
		return !empty
	case CondEquals:
		return v == first
	case CondNotEquals:
		return v != first
	case CondIn, CondHasSome:
		for _, op := range operands {
			if v == normalize(strings.TrimSpace(op)) {
				return true
			}
		}
		return false
	case CondContains:
		return strings.Contains(v, first)
	case CondNotContains:
		return !strings.Contains(v, first)
	case CondStartsWith:
		return strings.HasPrefix(v, first)
	case CondEndsWith:
		return strings.HasSuffix(v, first)
	default:
		return false
	}
}
