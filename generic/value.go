package generic

import "strings"

// =============================================================================
// VALUE - Contract shared by every constraint-typed value
// =============================================================================

// Value is an immutable wrapper around one raw value and its constraint.
//
// Nothing on this interface panics or returns an error. Unparsable input
// produces a value whose canonical form is absent: IsValid reports false and
// Format/Serialize echo the raw input.
type Value interface {
	Constraint() Constraint
	Raw() Raw

	// Format renders the value for display.
	Format() string

	// FormatUnits renders the value with at most maxUnits unit groups.
	// Variants without units ignore the limit. maxUnits <= 0 means no limit.
	FormatUnits(maxUnits int) string

	Preview() string

	// Serialize returns the persisted form. For valid values,
	// Constraint().CreateValue(v.Serialize()).Format() == v.Format().
	Serialize() Raw

	// IsValid reports whether a canonical form exists and, unless
	// ignoreConfig is set, whether configuration bounds are satisfied.
	IsValid(ignoreConfig bool) bool

	// CompareTo returns -1, 0 or 1. Unorderable variants always return 0;
	// check IsOrderable before relying on it.
	CompareTo(other Value) int

	// Increment and Decrement return nil when the variant has no successor.
	Increment() Value
	Decrement() Value

	// Copy rebuilds the value from the same raw input, dropping any edit buffer.
	Copy() Value
	WithRaw(raw Raw) Value

	// ParseInput builds a value from literal keystrokes and keeps them as the
	// edit buffer, so redisplay doesn't reformat mid-edit.
	ParseInput(text string) Value
	EditBuffer() (string, bool)

	MeetCondition(condition ConditionType, operands []Operand) bool
	MeetFullTexts(needles []string) bool
}

// Constraint builds values for one attribute. Implementations are immutable.
type Constraint interface {
	Type() ConstraintType
	Category() Category
	CreateValue(raw Raw) Value

	// Config returns the configuration record, suitable for JSON encoding.
	Config() any
}

// Orderer is implemented by variants whose ordering depends on configuration,
// like multi-valued selections.
type Orderer interface {
	Orderable() bool
}

// IsOrderable reports whether CompareTo yields a real ordering for v.
// A multi-select list returns 0 for every pair; that 0 is "unordered", not
// "equal".
func IsOrderable(v Value) bool {
	if o, ok := v.(Orderer); ok {
		return o.Orderable()
	}
	return true
}

// Sign clamps a comparison result to -1, 0 or 1.
func Sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// CompareInvalid orders values whose canonical form may be absent: absent
// sorts before present; two absent values compare by raw text.
// The second return value is false when both are present and the caller must
// compare canonical forms itself.
func CompareInvalid(aValid, bValid bool, aRaw, bRaw Raw) (int, bool) {
	switch {
	case aValid && bValid:
		return 0, false
	case !aValid && !bValid:
		return strings.Compare(aRaw.String(), bRaw.String()), true
	case !aValid:
		return -1, true
	default:
		return 1, true
	}
}
