/*
Package factory provides JSON/YAML to Go constraint conversion.

PURPOSE:
  Converts constraint definitions into concrete generic.Constraint values.
  Attribute definitions live in the store and in config files as documents;
  the factory turns them back into the variant that knows how to parse,
  format and match values.

ENVELOPE:
  {
    "type": "Duration",
    "config": {
      "type": "Work",
      "conversions": {"days": 6},
      "maxUnit": "days"
    }
  }

  The same envelope in YAML:

    type: Percentage
    config:
      decimals: 1
      minValue: 0
      maxValue: 100

KEY FEATURES:
  - A missing or null config means "all defaults"
  - Unknown types fail with generic.ErrUnknownConstraintType
  - Invalid configs fail with a *generic.ConfigError naming the field

USAGE:
  f := NewConstraintFactory()
  c, err := f.ParseConstraint(`{"type":"Duration"}`, env)
  v := c.CreateValue(generic.Text("8w20m"))

SEE ALSO:
  - generic/registry.go: builder registration
  - duration, percentage, number, user, selection, text: the variants
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/warp/value-engine/generic"
	"gopkg.in/yaml.v3"

	// Variant packages register their builders on init.
	_ "github.com/warp/value-engine/duration"
	_ "github.com/warp/value-engine/number"
	_ "github.com/warp/value-engine/percentage"
	_ "github.com/warp/value-engine/selection"
	_ "github.com/warp/value-engine/text"
	_ "github.com/warp/value-engine/user"
)

// =============================================================================
// ENVELOPE
// =============================================================================

// ConstraintJSON is the serialized form of a constraint.
type ConstraintJSON struct {
	Type   generic.ConstraintType `json:"type"`
	Config json.RawMessage        `json:"config,omitempty"`
}

// ConstraintFactory builds constraints from their serialized form.
type ConstraintFactory struct{}

// NewConstraintFactory creates a new constraint factory.
func NewConstraintFactory() *ConstraintFactory {
	return &ConstraintFactory{}
}

// ParseConstraint parses a JSON envelope into a Constraint.
func (f *ConstraintFactory) ParseConstraint(jsonStr string, env generic.Environment) (generic.Constraint, error) {
	var cj ConstraintJSON
	if err := json.Unmarshal([]byte(jsonStr), &cj); err != nil {
		return nil, fmt.Errorf("failed to parse constraint JSON: %w", err)
	}
	return f.FromJSON(cj, env)
}

// ParseConstraintYAML parses a YAML envelope into a Constraint.
func (f *ConstraintFactory) ParseConstraintYAML(yamlStr string, env generic.Environment) (generic.Constraint, error) {
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(yamlStr), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse constraint YAML: %w", err)
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert constraint YAML: %w", err)
	}
	return f.ParseConstraint(string(js), env)
}

// Parse accepts either encoding. Input starting with '{' is read as JSON.
func (f *ConstraintFactory) Parse(doc string, env generic.Environment) (generic.Constraint, error) {
	if strings.HasPrefix(strings.TrimSpace(doc), "{") {
		return f.ParseConstraint(doc, env)
	}
	return f.ParseConstraintYAML(doc, env)
}

// FromJSON builds the constraint registered for cj.Type.
func (f *ConstraintFactory) FromJSON(cj ConstraintJSON, env generic.Environment) (generic.Constraint, error) {
	if cj.Type == "" {
		return nil, fmt.Errorf("constraint type is required: %w", generic.ErrUnknownConstraintType)
	}
	c, err := generic.BuildConstraint(cj.Type, cj.Config, env)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s constraint: %w", cj.Type, err)
	}
	return c, nil
}

// ToJSON converts a Constraint back to its envelope.
func (f *ConstraintFactory) ToJSON(c generic.Constraint) (ConstraintJSON, error) {
	config, err := json.Marshal(c.Config())
	if err != nil {
		return ConstraintJSON{}, fmt.Errorf("failed to encode %s config: %w", c.Type(), err)
	}
	return ConstraintJSON{Type: c.Type(), Config: config}, nil
}

// FromAttribute builds the constraint of a stored attribute.
func (f *ConstraintFactory) FromAttribute(a generic.Attribute, env generic.Environment) (generic.Constraint, error) {
	return f.FromJSON(ConstraintJSON{Type: a.ConstraintType, Config: a.Config}, env)
}

// =============================================================================
// ENVIRONMENT HELPERS
// =============================================================================

// UnitLetters turns a unit name to letter map, as found in config files,
// into an Environment.UnitLetter function. Nil for an empty map.
func UnitLetters(letters map[string]string) func(string) string {
	if len(letters) == 0 {
		return nil
	}
	m := make(map[string]string, len(letters))
	for unit, letter := range letters {
		m[strings.ToLower(strings.TrimSpace(unit))] = letter
	}
	return func(unit string) string { return m[unit] }
}
