/*
registry.go - Constraint type registration and lookup

PURPOSE:
  Provides a registry for variant packages to register how their constraint
  is built from a configuration document. This lets the factory, the store
  and the API turn {"type": "Duration", "config": {...}} back into a concrete
  constraint without the generic package knowing any variant.

HOW IT WORKS:
  1. Variant packages implement a ConstraintBuilder
  2. Variant packages register it in init()
  3. factory.ConstraintFactory looks the builder up by ConstraintType

USAGE:
  // In duration/register.go
  func init() {
      generic.RegisterConstraint(generic.ConstraintDuration, build)
  }

  // In factory
  c, err := generic.BuildConstraint(generic.ConstraintDuration, raw, env)

SEE ALSO:
  - types.go: ConstraintType constants
  - factory/constraint.go: JSON/YAML envelope parsing
*/
package generic

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// =============================================================================
// CONSTRAINT REGISTRY
// =============================================================================

// ConstraintBuilder builds a constraint from its JSON configuration.
// An empty or null config means "all defaults".
type ConstraintBuilder func(config json.RawMessage, env Environment) (Constraint, error)

var (
	constraintRegistry = make(map[ConstraintType]ConstraintBuilder)
	registryMu         sync.RWMutex
)

// RegisterConstraint adds a builder to the global registry.
// Call this from variant package init() functions.
func RegisterConstraint(t ConstraintType, b ConstraintBuilder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	constraintRegistry[t] = b
}

// LookupConstraint finds a registered builder. Returns nil if not found.
func LookupConstraint(t ConstraintType) ConstraintBuilder {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return constraintRegistry[t]
}

// MustLookupConstraint finds a registered builder or panics.
// Use in tests or when you're certain the variant package is linked in.
func MustLookupConstraint(t ConstraintType) ConstraintBuilder {
	b := LookupConstraint(t)
	if b == nil {
		panic(fmt.Sprintf("constraint type not registered: %s", t))
	}
	return b
}

// ListConstraintTypes returns all registered types, sorted.
func ListConstraintTypes() []ConstraintType {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]ConstraintType, 0, len(constraintRegistry))
	for t := range constraintRegistry {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// BuildConstraint looks up the builder for t and runs it.
func BuildConstraint(t ConstraintType, config json.RawMessage, env Environment) (Constraint, error) {
	b := LookupConstraint(t)
	if b == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConstraintType, t)
	}
	return b(config, env)
}

// DecodeConfig unmarshals config into dst, treating empty and null as "keep defaults".
func DecodeConfig(t ConstraintType, config json.RawMessage, dst any) error {
	if len(config) == 0 || string(config) == "null" {
		return nil
	}
	if err := json.Unmarshal(config, dst); err != nil {
		return &ConfigError{Type: t, Field: "config", Err: err}
	}
	return nil
}
