package duration

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/warp/value-engine/generic"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Type selects the default conversion factors.
type Type string

const (
	TypeWork    Type = "Work"    // 5 days per week, 8 hours per day
	TypeClassic Type = "Classic" // 7 days per week, 24 hours per day
	TypeCustom  Type = "Custom"  // Classic defaults, meant to be overridden
)

// Config is the duration constraint configuration.
//
// Conversions overrides the factor of a unit, i.e. how many of the next
// smaller unit it equals: weeks -> days per week, days -> hours per day,
// hours -> minutes, minutes -> seconds, seconds -> milliseconds.
type Config struct {
	Type        Type           `json:"type,omitempty"`
	Conversions map[Unit]int64 `json:"conversions,omitempty"`

	// MaxUnit is the largest unit the formatter emits. Default: weeks.
	MaxUnit Unit `json:"maxUnit,omitempty"`
}

// Factor returns the factor of u after overrides and type defaults.
func (c Config) Factor(u Unit) int64 {
	if f, ok := c.Conversions[u]; ok {
		return f
	}
	switch u {
	case Weeks:
		if c.effectiveType() == TypeWork {
			return 5
		}
		return 7
	case Days:
		if c.effectiveType() == TypeWork {
			return 8
		}
		return 24
	case Hours, Minutes:
		return 60
	case Seconds:
		return 1000
	}
	return 1
}

func (c Config) effectiveType() Type {
	if c.Type == "" {
		return TypeWork
	}
	return c.Type
}

// LargestUnit returns MaxUnit or weeks.
func (c Config) LargestUnit() Unit {
	if c.MaxUnit.IsValid() {
		return c.MaxUnit
	}
	return Weeks
}

// Validate rejects unknown units, factors below one and chains whose
// millisecond value overflows int64.
func (c Config) Validate() error {
	switch c.Type {
	case "", TypeWork, TypeClassic, TypeCustom:
	default:
		return &generic.ConfigError{Type: generic.ConstraintDuration, Field: "type", Err: generic.ErrInvalidOption}
	}
	if c.MaxUnit != "" && !c.MaxUnit.IsValid() {
		return &generic.ConfigError{Type: generic.ConstraintDuration, Field: "maxUnit", Err: generic.ErrInvalidOption}
	}
	for u, f := range c.Conversions {
		if !u.IsValid() || f < 1 {
			return &generic.ConfigError{Type: generic.ConstraintDuration, Field: "conversions." + string(u), Err: generic.ErrInvalidConversionFactor}
		}
	}

	product := decimal.NewFromInt(1)
	limit := decimal.NewFromInt(math.MaxInt64)
	for _, u := range chain {
		product = product.Mul(decimal.NewFromInt(c.Factor(u)))
	}
	if product.GreaterThan(limit) {
		return &generic.ConfigError{Type: generic.ConstraintDuration, Field: "conversions", Err: generic.ErrInvalidConversionFactor}
	}
	return nil
}

// =============================================================================
// CONVERSION TABLE
// =============================================================================

// ConversionTable maps every unit to milliseconds.
type ConversionTable struct {
	millis [numUnits]int64
}

// NewConversionTable folds the chain from seconds upwards:
// millis(unit) = factor(unit) * millis(descendant). Validate the config first.
func NewConversionTable(cfg Config) ConversionTable {
	var t ConversionTable
	for i, u := range chain {
		t.millis[i] = resolveMillis(cfg, u)
	}
	return t
}

func resolveMillis(cfg Config, u Unit) int64 {
	next, ok := u.Descendant()
	if !ok {
		return cfg.Factor(u)
	}
	return cfg.Factor(u) * resolveMillis(cfg, next)
}

// Millis returns the milliseconds in one u, or 0 for an unknown unit.
func (t ConversionTable) Millis(u Unit) int64 {
	i := u.index()
	if i < 0 {
		return 0
	}
	return t.millis[i]
}
