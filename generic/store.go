/*
store.go - Persistence interface for attributes, records and users

PURPOSE:
  Defines the interface between the evaluation layer and the database.
  The value engine itself is pure; this is where constraint definitions and
  serialized values live between requests.

KEY TYPES:
  Attribute:     A named column with its constraint definition
  Record:        One serialized value of an attribute
  AttributeStore: Persistence for both, plus the user directory

SERIALIZED FORM:
  Records store Value.Serialize() output, never display text. Reading a
  record back goes through Constraint.CreateValue, which reproduces the same
  display for every valid value.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - generic/store/memory.go: In-memory for testing

SEE ALSO:
  - api/handlers.go: the only writer
*/
package generic

import (
	"context"
	"encoding/json"
	"time"
)

// =============================================================================
// RECORDS
// =============================================================================

// Attribute is a column definition: a name and a constraint document.
type Attribute struct {
	ID             string
	Name           string
	ConstraintType ConstraintType
	Config         json.RawMessage
	CreatedAt      time.Time
}

// Record is one stored value of an attribute.
type Record struct {
	ID          string
	AttributeID string
	Value       Raw
	CreatedAt   time.Time
}

// =============================================================================
// STORE
// =============================================================================

// AttributeStore persists attributes, records and the user directory.
// Stores assign IDs and CreatedAt when they are empty.
type AttributeStore interface {
	// SaveAttribute returns ErrDuplicateAttribute when another attribute
	// already uses the name.
	SaveAttribute(ctx context.Context, a Attribute) (Attribute, error)

	// GetAttribute returns ErrAttributeNotFound for an unknown ID.
	GetAttribute(ctx context.Context, id string) (*Attribute, error)

	ListAttributes(ctx context.Context) ([]Attribute, error)

	// AppendRecord returns ErrAttributeNotFound when the attribute doesn't exist.
	AppendRecord(ctx context.Context, r Record) (Record, error)

	// ListRecords returns records in insertion order.
	ListRecords(ctx context.Context, attributeID string) ([]Record, error)

	// SaveUser upserts by email, case-insensitively.
	SaveUser(ctx context.Context, u DirectoryUser) (DirectoryUser, error)
	ListUsers(ctx context.Context) ([]DirectoryUser, error)
}
