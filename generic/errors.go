/*
errors.go - Centralized error types for the value engine

PURPOSE:
  All error types in one place for consistency and discoverability.

WHERE ERRORS EXIST:
  The value layer itself never returns errors: unparsable input is an
  invalid value, unsupported operations return nil, unknown conditions are
  false. Errors only appear where configuration or storage is involved:

  1. Configuration errors - a constraint definition can't be built
  2. Store errors - attribute lookup and persistence failures

USAGE:
  c, err := factory.NewConstraintFactory().ParseConstraint(js, env)
  if errors.Is(err, generic.ErrAmbiguousUnitLetter) {
      // reject the locale's letter map
  }

SEE ALSO:
  - duration/config.go: letter map and conversion validation
  - factory/constraint.go: wraps these errors with the offending definition
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownConstraintType is returned when no builder is registered for a type.
	ErrUnknownConstraintType = errors.New("unknown constraint type")

	// ErrInvalidConversionFactor is returned for a duration conversion factor < 1.
	ErrInvalidConversionFactor = errors.New("conversion factor must be a positive integer")

	// ErrInvalidUnitLetter is returned when a unit letter isn't exactly one letter.
	ErrInvalidUnitLetter = errors.New("unit letter must be a single letter")

	// ErrAmbiguousUnitLetter is returned when two units would share a letter,
	// either inside one alphabet or across the canonical and native alphabets.
	ErrAmbiguousUnitLetter = errors.New("unit letter is ambiguous")

	// ErrInvalidOption is returned for an unrecognized enumerated option,
	// like a duration calendar type or a unit name.
	ErrInvalidOption = errors.New("invalid configuration option")

	// ErrInvalidRange is returned when a minimum exceeds its maximum.
	ErrInvalidRange = errors.New("minimum value exceeds maximum value")

	// ErrInvalidDecimals is returned for a negative decimal count.
	ErrInvalidDecimals = errors.New("decimals must not be negative")

	// ErrAttributeNotFound is returned when a referenced attribute doesn't exist.
	ErrAttributeNotFound = errors.New("attribute not found")

	// ErrDuplicateAttribute is returned when an attribute name is already taken.
	ErrDuplicateAttribute = errors.New("attribute name already exists")

	// ErrInvalidValue is returned when a value is rejected before being stored.
	ErrInvalidValue = errors.New("value does not satisfy its constraint")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigError names the constraint and field a configuration error belongs to.
type ConfigError struct {
	Type  ConstraintType
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s constraint: %s: %v", e.Type, e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// InvalidValueError describes a value rejected by an attribute's constraint.
type InvalidValueError struct {
	AttributeID string
	Raw         Raw
	Display     string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %q for attribute %s", e.Display, e.AttributeID)
}

func (e *InvalidValueError) Unwrap() error {
	return ErrInvalidValue
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConfigError returns true if the error comes from a constraint definition.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce) || errors.Is(err, ErrUnknownConstraintType)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAttributeNotFound)
}

// IsConflict returns true if the error indicates a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateAttribute)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return IsConfigError(err) || errors.Is(err, ErrInvalidValue)
}
