// Package selection implements the single and multi select constraint.
//
// Cells store option values. Input may use the value or the label, compared
// case and diacritic insensitively. Single selections order by option
// position; multi selections are unordered.
package selection

import (
	"encoding/json"
	"strings"

	"github.com/warp/value-engine/generic"
)

type Option struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

func (o Option) display() string {
	if o.Label != "" {
		return o.Label
	}
	return o.Value
}

type Config struct {
	Options []Option `json:"options"`
	Multi   bool     `json:"multi,omitempty"`
}

// Validate rejects blank and duplicate option values. Values that differ
// only once folded are rejected by NewConstraint.
func (c Config) Validate() error {
	seen := make(map[string]bool, len(c.Options))
	for _, o := range c.Options {
		v := strings.TrimSpace(o.Value)
		if v == "" || seen[v] {
			return &generic.ConfigError{Type: generic.ConstraintSelect, Field: "options", Err: generic.ErrInvalidOption}
		}
		seen[v] = true
	}
	return nil
}

type Constraint struct {
	config    Config
	index     map[string]int
	normalize generic.NormalizeFunc
}

var _ generic.Constraint = (*Constraint)(nil)

func NewConstraint(cfg Config, env generic.Environment) (*Constraint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Constraint{
		config:    cfg,
		index:     make(map[string]int, 2*len(cfg.Options)),
		normalize: env.Normalizer(),
	}
	// Values and labels share one folded key space. A key may only be
	// shared by an option's own value and label.
	for i, o := range cfg.Options {
		key := c.normalize(strings.TrimSpace(o.Value))
		if _, dup := c.index[key]; dup {
			return nil, c.optionError()
		}
		c.index[key] = i
	}
	for i, o := range cfg.Options {
		if o.Label == "" {
			continue
		}
		key := c.normalize(strings.TrimSpace(o.Label))
		if j, ok := c.index[key]; ok && j != i {
			return nil, c.optionError()
		}
		c.index[key] = i
	}
	return c, nil
}

func (c *Constraint) optionError() error {
	return &generic.ConfigError{Type: generic.ConstraintSelect, Field: "options", Err: generic.ErrInvalidOption}
}

func init() {
	generic.RegisterConstraint(generic.ConstraintSelect, func(config json.RawMessage, env generic.Environment) (generic.Constraint, error) {
		var cfg Config
		if err := generic.DecodeConfig(generic.ConstraintSelect, config, &cfg); err != nil {
			return nil, err
		}
		return NewConstraint(cfg, env)
	})
}

func (c *Constraint) Type() generic.ConstraintType { return generic.ConstraintSelect }
func (c *Constraint) Category() generic.Category    { return generic.CategorySet }
func (c *Constraint) Config() any                   { return c.config }

func (c *Constraint) CreateValue(raw generic.Raw) generic.Value {
	return c.newValue(raw, nil)
}

func (c *Constraint) newValue(raw generic.Raw, input *string) *Value {
	v := &Value{c: c, raw: raw, input: input}
	for _, item := range raw.Items() {
		i, ok := c.index[c.normalize(item)]
		if !ok {
			v.unknown = append(v.unknown, item)
			continue
		}
		v.selected = append(v.selected, i)
	}
	return v
}

type Value struct {
	c        *Constraint
	raw      generic.Raw
	selected []int // option indexes, input order
	unknown  []string
	input    *string
}

var (
	_ generic.Value   = (*Value)(nil)
	_ generic.Orderer = (*Value)(nil)
)

func (v *Value) Constraint() generic.Constraint { return v.c }
func (v *Value) Raw() generic.Raw               { return v.raw }

func (v *Value) valid() bool { return len(v.selected) > 0 && len(v.unknown) == 0 }

// Selected returns the chosen options.
func (v *Value) Selected() []Option {
	out := make([]Option, len(v.selected))
	for i, idx := range v.selected {
		out[i] = v.c.config.Options[idx]
	}
	return out
}

func (v *Value) Format() string {
	if v.input != nil {
		return *v.input
	}
	if !v.valid() {
		return v.raw.String()
	}
	labels := make([]string, len(v.selected))
	for i, o := range v.Selected() {
		labels[i] = o.display()
	}
	return strings.Join(labels, ", ")
}

func (v *Value) FormatUnits(int) string { return v.Format() }
func (v *Value) Preview() string        { return v.Format() }

func (v *Value) Serialize() generic.Raw {
	if !v.valid() {
		return v.raw
	}
	values := make([]string, len(v.selected))
	for i, o := range v.Selected() {
		values[i] = o.Value
	}
	if v.c.config.Multi {
		return generic.List(values...)
	}
	return generic.Text(values[0])
}

func (v *Value) IsValid(ignoreConfig bool) bool {
	if !v.valid() {
		return false
	}
	return ignoreConfig || v.c.config.Multi || len(v.selected) == 1
}

func (v *Value) Orderable() bool { return !v.c.config.Multi }

func (v *Value) CompareTo(other generic.Value) int {
	o, ok := other.(*Value)
	if !ok || !v.Orderable() {
		return 0
	}
	if r, done := generic.CompareInvalid(v.valid(), o.valid(), v.raw, o.raw); done {
		return r
	}
	return generic.Sign(v.selected[0] - o.selected[0])
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

// keys maps items to option values; unknown items keep their folded text.
func (v *Value) keys() []string {
	keys := make([]string, 0, len(v.selected)+len(v.unknown))
	for _, o := range v.Selected() {
		keys = append(keys, o.Value)
	}
	for _, u := range v.unknown {
		keys = append(keys, v.c.normalize(u))
	}
	return keys
}

func (v *Value) MeetCondition(cond generic.ConditionType, operands []generic.Operand) bool {
	var want []string
	for _, op := range operands {
		want = append(want, v.c.newValue(op.Value, nil).keys()...)
	}
	return generic.MeetSet(cond, v.keys(), want)
}

func (v *Value) MeetFullTexts(needles []string) bool {
	return generic.MeetFullTexts(v.Format(), needles, v.c.normalize)
}
