// Package text implements the free text constraint.
package text

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/warp/value-engine/generic"
)

type Config struct {
	// MaxLength limits the rune count. 0 means unlimited.
	MaxLength int  `json:"maxLength,omitempty"`
	Multiline bool `json:"multiline,omitempty"`
}

func (c Config) Validate() error {
	if c.MaxLength < 0 {
		return &generic.ConfigError{Type: generic.ConstraintText, Field: "maxLength", Err: generic.ErrInvalidRange}
	}
	return nil
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
	generic.RegisterConstraint(generic.ConstraintText, func(config json.RawMessage, env generic.Environment) (generic.Constraint, error) {
		var cfg Config
		if err := generic.DecodeConfig(generic.ConstraintText, config, &cfg); err != nil {
			return nil, err
		}
		return NewConstraint(cfg, env)
	})
}

func (c *Constraint) Type() generic.ConstraintType { return generic.ConstraintText }
func (c *Constraint) Category() generic.Category    { return generic.CategoryText }
func (c *Constraint) Config() any                   { return c.config }

func (c *Constraint) CreateValue(raw generic.Raw) generic.Value {
	return c.newValue(raw, nil)
}

// newValue accepts any scalar: numbers are kept as their decimal text.
// Lists have no text form.
func (c *Constraint) newValue(raw generic.Raw, input *string) *Value {
	v := &Value{c: c, raw: raw, input: input, valid: raw.Kind() != generic.RawList}
	if v.valid {
		v.text = raw.String()
		if !c.config.Multiline {
			v.text = strings.Join(strings.Fields(v.text), " ")
		}
	}
	return v
}

type Value struct {
	c     *Constraint
	raw   generic.Raw
	text  string
	valid bool
	input *string
}

var _ generic.Value = (*Value)(nil)

func (v *Value) Constraint() generic.Constraint { return v.c }
func (v *Value) Raw() generic.Raw               { return v.raw }

func (v *Value) Format() string {
	if v.input != nil {
		return *v.input
	}
	if !v.valid {
		return v.raw.String()
	}
	return v.text
}

// FormatUnits treats maxUnits as a rune limit and appends "…" when it cuts.
func (v *Value) FormatUnits(maxUnits int) string {
	s := v.Format()
	if maxUnits <= 0 || utf8.RuneCountInString(s) <= maxUnits {
		return s
	}
	return string([]rune(s)[:maxUnits]) + "…"
}

// Preview is the first line.
func (v *Value) Preview() string {
	first, _, _ := strings.Cut(v.Format(), "\n")
	return first
}

// Serialize keeps null as null so empty cells stay empty.
func (v *Value) Serialize() generic.Raw {
	if !v.valid || v.raw.IsNull() {
		return v.raw
	}
	return generic.Text(v.text)
}

func (v *Value) IsValid(ignoreConfig bool) bool {
	if !v.valid {
		return false
	}
	if ignoreConfig || v.c.config.MaxLength == 0 {
		return true
	}
	return utf8.RuneCountInString(v.text) <= v.c.config.MaxLength
}

// CompareTo orders folded text.
func (v *Value) CompareTo(other generic.Value) int {
	o, ok := other.(*Value)
	if !ok {
		return 0
	}
	if r, done := generic.CompareInvalid(v.valid, o.valid, v.raw, o.raw); done {
		return r
	}
	return strings.Compare(v.c.normalize(v.text), v.c.normalize(o.text))
}

func (v *Value) Increment() generic.Value { return nil }
func (v *Value) Decrement() generic.Value { return nil }

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
	ops := make([]string, 0, len(operands))
	for _, op := range operands {
		ops = append(ops, op.Value.Items()...)
	}
	return generic.MeetText(cond, v.text, generic.IsEmptyRaw(v.raw), ops, v.c.normalize)
}

func (v *Value) MeetFullTexts(needles []string) bool {
	return generic.MeetFullTexts(v.Format(), needles, v.c.normalize)
}
