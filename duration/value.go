package duration

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/warp/value-engine/generic"
)

// =============================================================================
// CONSTRAINT
// =============================================================================

// Constraint builds duration values. It is immutable once built.
type Constraint struct {
	config    Config
	grammar   *Grammar
	normalize generic.NormalizeFunc
}

var _ generic.Constraint = (*Constraint)(nil)

// NewConstraint validates cfg and resolves the native alphabet through
// env.UnitLetter. A nil UnitLetter uses the canonical letters.
func NewConstraint(cfg Config, env generic.Environment) (*Constraint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var fn LetterFunc
	if env.UnitLetter != nil {
		fn = func(u Unit) string { return env.UnitLetter(string(u)) }
	}
	letters, err := NewLetterMap(fn)
	if err != nil {
		return nil, err
	}
	return &Constraint{
		config:    cfg,
		grammar:   NewGrammar(NewConversionTable(cfg), letters),
		normalize: env.Normalizer(),
	}, nil
}

func (c *Constraint) Type() generic.ConstraintType { return generic.ConstraintDuration }
func (c *Constraint) Category() generic.Category    { return generic.CategoryOrderable }
func (c *Constraint) Config() any                   { return c.config }
func (c *Constraint) Grammar() *Grammar             { return c.grammar }

func (c *Constraint) CreateValue(raw generic.Raw) generic.Value {
	return c.newValue(raw, nil)
}

// FromMillis builds a value from a millisecond count.
func (c *Constraint) FromMillis(ms int64) *Value {
	return c.newValue(generic.NumberFromInt(ms), nil)
}

func (c *Constraint) newValue(raw generic.Raw, input *string) *Value {
	v := &Value{c: c, raw: raw, input: input}
	v.millis, v.valid = c.resolve(raw)
	return v
}

// resolve computes the canonical millisecond count. Numbers must be
// non-negative integers that fit in int64.
func (c *Constraint) resolve(raw generic.Raw) (int64, bool) {
	switch raw.Kind() {
	case generic.RawNumber:
		d, ok := generic.DecimalOf(raw)
		if !ok || !d.IsInteger() || d.Sign() < 0 || d.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
			return 0, false
		}
		return d.IntPart(), true
	case generic.RawText:
		s, _ := raw.AsText()
		return c.grammar.ParseMillis(s)
	default:
		return 0, false
	}
}

// =============================================================================
// VALUE
// =============================================================================

// Value is one duration. The canonical form is an integer millisecond count.
type Value struct {
	c      *Constraint
	raw    generic.Raw
	millis int64
	valid  bool
	input  *string
}

var _ generic.Value = (*Value)(nil)

func (v *Value) Constraint() generic.Constraint { return v.c }
func (v *Value) Raw() generic.Raw               { return v.raw }

// Millis returns the canonical count, absent for invalid input.
func (v *Value) Millis() (int64, bool) { return v.millis, v.valid }

// SaveMillis returns the count to persist in a numeric column: invalid
// input is coerced to 0.
func (v *Value) SaveMillis() int64 {
	if !v.valid {
		return 0
	}
	return v.millis
}

func (v *Value) Format() string { return v.FormatUnits(0) }

// FormatUnits renders at most maxUnits non-zero unit groups. An edit buffer
// is echoed verbatim.
func (v *Value) FormatUnits(maxUnits int) string {
	if v.input != nil {
		return *v.input
	}
	if !v.valid {
		return v.raw.String()
	}
	return v.c.grammar.FormatMillis(v.millis, v.c.config.LargestUnit(), maxUnits)
}

func (v *Value) Preview() string { return v.Format() }

// Serialize persists the millisecond count, or the raw input when invalid.
func (v *Value) Serialize() generic.Raw {
	if !v.valid {
		return v.raw
	}
	return generic.NumberFromInt(v.millis)
}

// IsValid has no configuration bounds to check.
func (v *Value) IsValid(bool) bool { return v.valid }

func (v *Value) CompareTo(other generic.Value) int {
	o, ok := other.(*Value)
	if !ok {
		return 0
	}
	if r, done := generic.CompareInvalid(v.valid, o.valid, v.raw, o.raw); done {
		return r
	}
	switch {
	case v.millis < o.millis:
		return -1
	case v.millis > o.millis:
		return 1
	default:
		return 0
	}
}

// step is the size of the smallest unit shown by Format, so "1w3h"
// increments by one hour.
func (v *Value) step() int64 {
	groups := v.c.grammar.decompose(uint64(v.millis), v.c.config.LargestUnit())
	if len(groups) == 0 {
		return v.c.grammar.Table().Millis(Seconds)
	}
	return v.c.grammar.Table().Millis(groups[len(groups)-1].unit)
}

func (v *Value) Increment() generic.Value {
	if !v.valid {
		return nil
	}
	step := v.step()
	if v.millis > math.MaxInt64-step {
		return nil
	}
	return v.c.FromMillis(v.millis + step)
}

// Decrement clamps at zero.
func (v *Value) Decrement() generic.Value {
	if !v.valid {
		return nil
	}
	return v.c.FromMillis(max(v.millis-v.step(), 0))
}

func (v *Value) Copy() generic.Value                   { return v.c.newValue(v.raw, nil) }
func (v *Value) WithRaw(raw generic.Raw) generic.Value { return v.c.newValue(raw, nil) }

func (v *Value) ParseInput(text string) generic.Value {
	return v.c.newValue(generic.Text(text), &text)
}

func (v *Value) EditBuffer() (string, bool) {
	if v.input == nil {
		return "", false
	}
	return *v.input, true
}

func (v *Value) ordinal() generic.Ordinal {
	return generic.OrdinalOf(decimal.NewFromInt(v.millis), v.valid, v.raw)
}

func (v *Value) MeetCondition(cond generic.ConditionType, operands []generic.Operand) bool {
	ops := make([]generic.Ordinal, 0, len(operands))
	for _, op := range operands {
		ops = append(ops, v.c.newValue(op.Value, nil).ordinal())
	}
	return generic.MeetOrderable(cond, v.ordinal(), ops)
}

func (v *Value) MeetFullTexts(needles []string) bool {
	return generic.MeetFullTexts(v.Format(), needles, v.c.normalize)
}
