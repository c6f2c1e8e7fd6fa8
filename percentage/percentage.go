/*
Package percentage implements the percentage constraint.

CANONICAL FORM:
  A decimal fraction, 0.67 for 67%. It is rounded half-up to decimals+2
  fractional digits (decimals counts digits of the displayed percentage) and
  trailing zeros are stripped, so equal percentages compare and serialize
  identically.

INPUT:
  "66.66%" is a percentage literal and is divided by 100.
  "0.6666" without a suffix is already a fraction.
  Raw numbers are fractions too: that's what Serialize writes.

BOUNDS:
  MinValue/MaxValue are written on the 0-100 display scale. A value outside
  them still has a canonical form, it's only reported by IsValid(false).
*/
package percentage

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/warp/value-engine/generic"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config is the percentage constraint configuration.
type Config struct {
	Decimals int              `json:"decimals"`
	MinValue *decimal.Decimal `json:"minValue,omitempty"`
	MaxValue *decimal.Decimal `json:"maxValue,omitempty"`
}

func (c Config) Validate() error {
	if c.Decimals < 0 || c.Decimals > generic.MaxDecimals {
		return &generic.ConfigError{Type: generic.ConstraintPercentage, Field: "decimals", Err: generic.ErrInvalidDecimals}
	}
	if c.MinValue != nil && !generic.InBounds(*c.MinValue) {
		return &generic.ConfigError{Type: generic.ConstraintPercentage, Field: "minValue", Err: generic.ErrInvalidRange}
	}
	if c.MaxValue != nil && !generic.InBounds(*c.MaxValue) {
		return &generic.ConfigError{Type: generic.ConstraintPercentage, Field: "maxValue", Err: generic.ErrInvalidRange}
	}
	if c.MinValue != nil && c.MaxValue != nil && c.MinValue.GreaterThan(*c.MaxValue) {
		return &generic.ConfigError{Type: generic.ConstraintPercentage, Field: "minValue", Err: generic.ErrInvalidRange}
	}
	return nil
}

// places is the number of fractional digits kept on the fraction.
func (c Config) places() int32 { return int32(c.Decimals) + 2 }

// step is one point on the display scale.
var step = decimal.New(1, -2)

// =============================================================================
// CONSTRAINT
// =============================================================================

type Constraint struct {
	config    Config
	normalize generic.NormalizeFunc
}

var _ generic.Constraint = (*Constraint)(nil)

func NewConstraint(cfg Config, env generic.Environment) (*Constraint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Constraint{config: cfg, normalize: env.Normalizer()}, nil
}

func init() {
	generic.RegisterConstraint(generic.ConstraintPercentage, func(config json.RawMessage, env generic.Environment) (generic.Constraint, error) {
		var cfg Config
		if err := generic.DecodeConfig(generic.ConstraintPercentage, config, &cfg); err != nil {
			return nil, err
		}
		return NewConstraint(cfg, env)
	})
}

func (c *Constraint) Type() generic.ConstraintType { return generic.ConstraintPercentage }
func (c *Constraint) Category() generic.Category    { return generic.CategoryOrderable }
func (c *Constraint) Config() any                   { return c.config }

func (c *Constraint) CreateValue(raw generic.Raw) generic.Value {
	return c.newValue(raw, nil)
}

// FromFraction builds a value from a canonical fraction.
func (c *Constraint) FromFraction(f decimal.Decimal) *Value {
	return c.newValue(generic.Number(f), nil)
}

func (c *Constraint) newValue(raw generic.Raw, input *string) *Value {
	v := &Value{c: c, raw: raw, input: input}
	var d decimal.Decimal
	switch raw.Kind() {
	case generic.RawNumber:
		d, v.valid = generic.DecimalOf(raw)
	case generic.RawText:
		s, _ := raw.AsText()
		d, v.valid = generic.ParsePercentage(s)
	}
	if v.valid {
		v.fraction = generic.Normalize(d, c.config.places())
	}
	return v
}

// =============================================================================
// VALUE
// =============================================================================

type Value struct {
	c        *Constraint
	raw      generic.Raw
	fraction decimal.Decimal
	valid    bool
	input    *string
}

var _ generic.Value = (*Value)(nil)

func (v *Value) Constraint() generic.Constraint { return v.c }
func (v *Value) Raw() generic.Raw               { return v.raw }

// Fraction returns the canonical fraction, absent for invalid input.
func (v *Value) Fraction() (decimal.Decimal, bool) { return v.fraction, v.valid }

// Float returns the fraction as float64 and whether the conversion is exact.
func (v *Value) Float() (float64, bool) {
	if !v.valid {
		return 0, false
	}
	return generic.SafeFloat(v.fraction)
}

// Percent is the fraction on the display scale: 0.67 -> 67.
func (v *Value) Percent() decimal.Decimal {
	return generic.TrimTrailingZeros(v.fraction.Shift(2))
}

func (v *Value) Format() string {
	if v.input != nil {
		return *v.input
	}
	if !v.valid {
		return v.raw.String()
	}
	return v.Percent().String() + "%"
}

func (v *Value) FormatUnits(int) string { return v.Format() }
func (v *Value) Preview() string        { return v.Format() }

// Serialize writes the fraction as text: 66.66% at 0 decimals is "0.67".
// Invalid values keep their raw input; null becomes "".
func (v *Value) Serialize() generic.Raw {
	if !v.valid {
		if v.raw.IsNull() {
			return generic.Text("")
		}
		return v.raw
	}
	return generic.Text(v.fraction.String())
}

func (v *Value) IsValid(ignoreConfig bool) bool {
	if !v.valid {
		return false
	}
	if ignoreConfig {
		return true
	}
	pct := v.fraction.Shift(2)
	cfg := v.c.config
	if cfg.MinValue != nil && pct.LessThan(*cfg.MinValue) {
		return false
	}
	if cfg.MaxValue != nil && pct.GreaterThan(*cfg.MaxValue) {
		return false
	}
	return true
}

func (v *Value) CompareTo(other generic.Value) int {
	o, ok := other.(*Value)
	if !ok {
		return 0
	}
	if r, done := generic.CompareInvalid(v.valid, o.valid, v.raw, o.raw); done {
		return r
	}
	return v.fraction.Cmp(o.fraction)
}

// Increment adds one percentage point. The result carries no edit buffer.
func (v *Value) Increment() generic.Value {
	if !v.valid {
		return nil
	}
	return v.c.FromFraction(v.fraction.Add(step))
}

func (v *Value) Decrement() generic.Value {
	if !v.valid {
		return nil
	}
	return v.c.FromFraction(v.fraction.Sub(step))
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
	return generic.OrdinalOf(v.fraction, v.valid, v.raw)
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
