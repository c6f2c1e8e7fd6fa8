// Package number implements the plain numeric constraint.
//
// Values are arbitrary-precision decimals. With Decimals set, input is
// rounded half-up and displayed with exactly that many fractional digits.
// Separated renders thousands groups ("1,234,567.5") and makes "," a group
// separator on input instead of a decimal comma.
package number

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/value-engine/generic"
)

type Config struct {
	Decimals  *int             `json:"decimals,omitempty"`
	Separated bool             `json:"separated,omitempty"`
	MinValue  *decimal.Decimal `json:"minValue,omitempty"`
	MaxValue  *decimal.Decimal `json:"maxValue,omitempty"`
}

func (c Config) Validate() error {
	if c.Decimals != nil && (*c.Decimals < 0 || *c.Decimals > generic.MaxDecimals) {
		return &generic.ConfigError{Type: generic.ConstraintNumber, Field: "decimals", Err: generic.ErrInvalidDecimals}
	}
	if c.MinValue != nil && !generic.InBounds(*c.MinValue) {
		return &generic.ConfigError{Type: generic.ConstraintNumber, Field: "minValue", Err: generic.ErrInvalidRange}
	}
	if c.MaxValue != nil && !generic.InBounds(*c.MaxValue) {
		return &generic.ConfigError{Type: generic.ConstraintNumber, Field: "maxValue", Err: generic.ErrInvalidRange}
	}
	if c.MinValue != nil && c.MaxValue != nil && c.MinValue.GreaterThan(*c.MaxValue) {
		return &generic.ConfigError{Type: generic.ConstraintNumber, Field: "minValue", Err: generic.ErrInvalidRange}
	}
	return nil
}

// places returns the rounding precision, -1 for none.
func (c Config) places() int32 {
	if c.Decimals == nil {
		return -1
	}
	return int32(*c.Decimals)
}

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
	generic.RegisterConstraint(generic.ConstraintNumber, func(config json.RawMessage, env generic.Environment) (generic.Constraint, error) {
		var cfg Config
		if err := generic.DecodeConfig(generic.ConstraintNumber, config, &cfg); err != nil {
			return nil, err
		}
		return NewConstraint(cfg, env)
	})
}

func (c *Constraint) Type() generic.ConstraintType { return generic.ConstraintNumber }
func (c *Constraint) Category() generic.Category    { return generic.CategoryOrderable }
func (c *Constraint) Config() any                   { return c.config }

func (c *Constraint) CreateValue(raw generic.Raw) generic.Value {
	return c.newValue(raw, nil)
}

func (c *Constraint) FromDecimal(d decimal.Decimal) *Value {
	return c.newValue(generic.Number(d), nil)
}

func (c *Constraint) newValue(raw generic.Raw, input *string) *Value {
	v := &Value{c: c, raw: raw, input: input}
	var d decimal.Decimal
	switch raw.Kind() {
	case generic.RawNumber:
		d, v.valid = generic.DecimalOf(raw)
	case generic.RawText:
		s, _ := raw.AsText()
		if c.config.Separated {
			s = strings.ReplaceAll(s, ",", "")
		}
		d, v.valid = generic.ParseDecimal(s)
	}
	if v.valid {
		v.number = generic.Normalize(d, c.config.places())
	}
	return v
}

type Value struct {
	c      *Constraint
	raw    generic.Raw
	number decimal.Decimal
	valid  bool
	input  *string
}

var _ generic.Value = (*Value)(nil)

func (v *Value) Constraint() generic.Constraint { return v.c }
func (v *Value) Raw() generic.Raw               { return v.raw }

func (v *Value) Decimal() (decimal.Decimal, bool) { return v.number, v.valid }

func (v *Value) Format() string {
	if v.input != nil {
		return *v.input
	}
	if !v.valid {
		return v.raw.String()
	}
	var s string
	if p := v.c.config.places(); p >= 0 {
		s = v.number.StringFixed(p)
	} else {
		s = v.number.String()
	}
	if v.c.config.Separated {
		s = groupThousands(s)
	}
	return s
}

// groupThousands inserts "," every three integer digits of a plain
// decimal string.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}

func (v *Value) FormatUnits(int) string { return v.Format() }
func (v *Value) Preview() string        { return v.Format() }

// Serialize writes a number literal, or the raw input when invalid.
func (v *Value) Serialize() generic.Raw {
	if !v.valid {
		return v.raw
	}
	return generic.Number(v.number)
}

func (v *Value) IsValid(ignoreConfig bool) bool {
	if !v.valid {
		return false
	}
	if ignoreConfig {
		return true
	}
	cfg := v.c.config
	if cfg.MinValue != nil && v.number.LessThan(*cfg.MinValue) {
		return false
	}
	if cfg.MaxValue != nil && v.number.GreaterThan(*cfg.MaxValue) {
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
	return v.number.Cmp(o.number)
}

var one = decimal.NewFromInt(1)

func (v *Value) Increment() generic.Value {
	if !v.valid {
		return nil
	}
	return v.c.FromDecimal(v.number.Add(one))
}

func (v *Value) Decrement() generic.Value {
	if !v.valid {
		return nil
	}
	return v.c.FromDecimal(v.number.Sub(one))
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

func (v *Value) MeetCondition(cond generic.ConditionType, operands []generic.Operand) bool {
	ops := make([]generic.Ordinal, 0, len(operands))
	for _, op := range operands {
		o := v.c.newValue(op.Value, nil)
		ops = append(ops, generic.OrdinalOf(o.number, o.valid, o.raw))
	}
	return generic.MeetOrderable(cond, generic.OrdinalOf(v.number, v.valid, v.raw), ops)
}

func (v *Value) MeetFullTexts(needles []string) bool {
	return generic.MeetFullTexts(v.Format(), needles, v.c.normalize)
}
