/*
Package generic provides the constraint-agnostic value engine.

PURPOSE:
  This package contains the types and algorithms shared by every
  constraint-typed value. Whether a column holds durations, percentages or
  user references, the same contract formats, serializes, validates,
  compares and matches its values against query conditions.

KEY CONCEPTS IN THIS FILE (types.go):
  - Raw: the stored, un-normalized input (null, text, number or list)
  - ConstraintType: the declared semantic type of an attribute
  - Category: how conditions are evaluated (orderable, set, text)

DESIGN PRINCIPLES:
  1. Immutability: values are built once and never modified
  2. Precision: numbers travel as decimal.Decimal, never float64
  3. No panics, no errors: unparsable input is an invalid value, not a failure
  4. Closed variants: the concrete value type is chosen once, at construction

USAGE:
  c, err := percentage.NewConstraint(percentage.Config{Decimals: 0}, generic.Environment{})
  if err != nil {
      return err
  }
  v := c.CreateValue(generic.Text("66.66%"))
  v.Format()    // "67%"
  v.Serialize() // Text("0.67")

SEE ALSO:
  - value.go: Value and Constraint interfaces
  - condition.go: condition algebra
  - decimal.go: decimal-scaled parsing and rounding
*/
package generic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RAW - Tagged union of stored values
// =============================================================================

// RawKind discriminates the Raw union.
type RawKind int

const (
	RawNull RawKind = iota
	RawText
	RawNumber
	RawList
)

func (k RawKind) String() string {
	switch k {
	case RawText:
		return "text"
	case RawNumber:
		return "number"
	case RawList:
		return "list"
	default:
		return "null"
	}
}

// Raw is a value as it is stored or typed, before any constraint looks at it.
// The zero Raw is null.
type Raw struct {
	kind   RawKind
	text   string
	number decimal.Decimal
	list   []string
}

func Null() Raw                    { return Raw{} }
func Text(s string) Raw            { return Raw{kind: RawText, text: s} }
func Number(d decimal.Decimal) Raw { return Raw{kind: RawNumber, number: d} }
func NumberFromInt(n int64) Raw    { return Number(decimal.NewFromInt(n)) }

func NumberFromFloat(f float64) Raw { return Number(decimal.NewFromFloat(f)) }

// List copies items so the caller can't mutate the Raw afterwards.
func List(items ...string) Raw {
	cp := make([]string, len(items))
	copy(cp, items)
	return Raw{kind: RawList, list: cp}
}

func (r Raw) Kind() RawKind { return r.kind }
func (r Raw) IsNull() bool  { return r.kind == RawNull }

func (r Raw) AsText() (string, bool) { return r.text, r.kind == RawText }

func (r Raw) AsNumber() (decimal.Decimal, bool) { return r.number, r.kind == RawNumber }

func (r Raw) AsList() ([]string, bool) {
	if r.kind != RawList {
		return nil, false
	}
	cp := make([]string, len(r.list))
	copy(cp, r.list)
	return cp, true
}

// Items flattens the raw value into a list of trimmed, non-blank strings.
func (r Raw) Items() []string {
	var src []string
	switch r.kind {
	case RawText:
		src = []string{r.text}
	case RawNumber:
		src = []string{r.number.String()}
	case RawList:
		src = r.list
	}
	items := make([]string, 0, len(src))
	for _, s := range src {
		if s = strings.TrimSpace(s); s != "" {
			items = append(items, s)
		}
	}
	return items
}

// String renders the raw value the way an invalid value is echoed back.
func (r Raw) String() string {
	switch r.kind {
	case RawText:
		return r.text
	case RawNumber:
		return r.number.String()
	case RawList:
		return strings.Join(r.list, ", ")
	default:
		return ""
	}
}

// Equal compares kind and content. Numbers compare by value, so 1.50 == 1.5.
func (r Raw) Equal(o Raw) bool {
	if r.kind != o.kind {
		return false
	}
	switch r.kind {
	case RawText:
		return r.text == o.text
	case RawNumber:
		return r.number.Equal(o.number)
	case RawList:
		if len(r.list) != len(o.list) {
			return false
		}
		for i := range r.list {
			if r.list[i] != o.list[i] {
				return false
			}
		}
	}
	return true
}

// MarshalJSON writes numbers as literals so no precision is lost.
func (r Raw) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case RawText:
		return json.Marshal(r.text)
	case RawNumber:
		return []byte(r.number.String()), nil
	case RawList:
		if r.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(r.list)
	default:
		return []byte("null"), nil
	}
}

func (r *Raw) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	raw, err := rawFromAny(v)
	if err != nil {
		return err
	}
	*r = raw
	return nil
}

// RawFromAny converts a decoded JSON/YAML value into a Raw.
func RawFromAny(v any) (Raw, error) { return rawFromAny(v) }

func rawFromAny(v any) (Raw, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case string:
		return Text(t), nil
	case bool:
		return Text(fmt.Sprint(t)), nil
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return Null(), fmt.Errorf("invalid number %q: %w", t, err)
		}
		if !InBounds(d) {
			// Kept verbatim so it is echoed, and rejected by every variant.
			return Text(t.String()), nil
		}
		return Number(d), nil
	case int:
		return NumberFromInt(int64(t)), nil
	case int64:
		return NumberFromInt(t), nil
	case float64:
		return NumberFromFloat(t), nil
	case []any:
		items := make([]string, 0, len(t))
		for _, e := range t {
			item, err := rawFromAny(e)
			if err != nil {
				return Null(), err
			}
			if item.kind == RawList {
				return Null(), fmt.Errorf("nested lists are not supported")
			}
			items = append(items, item.String())
		}
		return List(items...), nil
	case []string:
		return List(t...), nil
	default:
		return Null(), fmt.Errorf("unsupported raw value of type %T", v)
	}
}

// =============================================================================
// CONSTRAINT TYPES
// =============================================================================

// ConstraintType is the declared semantic type of an attribute.
type ConstraintType string

const (
	ConstraintText       ConstraintType = "Text"
	ConstraintNumber     ConstraintType = "Number"
	ConstraintPercentage ConstraintType = "Percentage"
	ConstraintDuration   ConstraintType = "Duration"
	ConstraintUser       ConstraintType = "User"
	ConstraintSelect     ConstraintType = "Select"
)

// Category selects the condition algebra a constraint's values use.
type Category string

const (
	CategoryOrderable Category = "orderable" // number, percentage, duration
	CategorySet       Category = "set"       // user, select
	CategoryText      Category = "text"
)

// =============================================================================
// ENVIRONMENT - Collaborators owned outside the value layer
// =============================================================================

// DirectoryUser is an entry of the user directory used to resolve user references.
type DirectoryUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Environment carries the external collaborators a constraint needs when it
// is built: who is asking, who exists, how units are spelled and how text is
// folded for search. The zero Environment is usable.
type Environment struct {
	CurrentUser string
	Users       []DirectoryUser

	// UnitLetter returns the localized letter for a duration unit name
	// ("weeks", "days", ...). Empty results fall back to canonical letters.
	UnitLetter func(unit string) string

	Normalize NormalizeFunc
}

// Normalizer returns the configured normalizer or FoldText.
func (e Environment) Normalizer() NormalizeFunc {
	if e.Normalize != nil {
		return e.Normalize
	}
	return FoldText
}
