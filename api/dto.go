/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Raw values travel as
  their JSON shape (null, string, number or string array), exactly as
  generic.Raw encodes them.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Small response wrappers

TYPES:
  Values:
    ValueDTO, FormatRequest, InputRequest, StepRequest, CompareRequest,
    ConditionRequest, FullTextRequest

  Attributes:
    AttributeDTO, CreateAttributeRequest, RecordDTO, AppendRecordRequest,
    QueryRequest

  Users:
    UserDTO, CreateUserRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/constraint.go: ConstraintJSON envelope
*/
package api

import (
	"time"

	"github.com/warp/value-engine/factory"
	"github.com/warp/value-engine/generic"
)

// =============================================================================
// VALUES
// =============================================================================

// ValueDTO describes a value the way a client renders it.
type ValueDTO struct {
	Raw        generic.Raw `json:"raw"`
	Format     string      `json:"format"`
	Preview    string      `json:"preview"`
	Serialized generic.Raw `json:"serialized"`
	Valid      bool        `json:"valid"`

	// Parsable is true when a canonical form exists, even if it falls
	// outside the configured bounds.
	Parsable   bool    `json:"parsable"`
	EditBuffer *string `json:"edit_buffer,omitempty"`
}

type ConstraintTypeDTO struct {
	Type     generic.ConstraintType `json:"type"`
	Category generic.Category       `json:"category"`
}

// FormatRequest formats one raw value. MaxUnits limits duration groups.
type FormatRequest struct {
	Constraint factory.ConstraintJSON `json:"constraint"`
	Value      generic.Raw            `json:"value"`
	MaxUnits   int                    `json:"max_units,omitempty"`
}

// InputRequest parses literal keystrokes.
type InputRequest struct {
	Constraint factory.ConstraintJSON `json:"constraint"`
	Text       string                 `json:"text"`
}

// StepRequest asks for the successor ("up") or predecessor ("down").
type StepRequest struct {
	Constraint factory.ConstraintJSON `json:"constraint"`
	Value      generic.Raw            `json:"value"`
	Direction  string                 `json:"direction"`
}

// StepResponse holds a nil Value when the variant has no successor.
type StepResponse struct {
	Value *ValueDTO `json:"value"`
}

type CompareRequest struct {
	Constraint factory.ConstraintJSON `json:"constraint"`
	A          generic.Raw            `json:"a"`
	B          generic.Raw            `json:"b"`
}

// CompareResponse carries the ordering; Result is meaningless when
// Orderable is false.
type CompareResponse struct {
	Result    int  `json:"result"`
	Orderable bool `json:"orderable"`
}

type ConditionRequest struct {
	Constraint factory.ConstraintJSON `json:"constraint"`
	Value      generic.Raw            `json:"value"`
	Condition  generic.ConditionType  `json:"condition"`
	Operands   []generic.Operand      `json:"operands"`
}

type FullTextRequest struct {
	Constraint factory.ConstraintJSON `json:"constraint"`
	Value      generic.Raw            `json:"value"`
	Needles    []string               `json:"needles"`
}

type MatchResponse struct {
	Met bool `json:"met"`
}

// =============================================================================
// ATTRIBUTES AND RECORDS
// =============================================================================

// AttributeDTO represents an attribute in API responses.
type AttributeDTO struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Constraint factory.ConstraintJSON `json:"constraint"`
	CreatedAt  string                 `json:"created_at"`
}

type CreateAttributeRequest struct {
	Name       string                 `json:"name"`
	Constraint factory.ConstraintJSON `json:"constraint"`
}

// RecordDTO is a stored value, rendered through its attribute's constraint.
type RecordDTO struct {
	ID          string   `json:"id"`
	AttributeID string   `json:"attribute_id"`
	Value       ValueDTO `json:"value"`
	CreatedAt   string   `json:"created_at"`
}

type AppendRecordRequest struct {
	Value generic.Raw `json:"value"`
}

// QueryRequest filters an attribute's records. An empty Condition or
// FullText is not applied.
type QueryRequest struct {
	Condition generic.ConditionType `json:"condition,omitempty"`
	Operands  []generic.Operand     `json:"operands,omitempty"`
	FullText  []string              `json:"fulltext,omitempty"`
}

// =============================================================================
// USERS
// =============================================================================

type UserDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toValueDTO(v generic.Value) ValueDTO {
	dto := ValueDTO{
		Raw:        v.Raw(),
		Format:     v.Format(),
		Preview:    v.Preview(),
		Serialized: v.Serialize(),
		Valid:      v.IsValid(false),
		Parsable:   v.IsValid(true),
	}
	if buf, ok := v.EditBuffer(); ok {
		dto.EditBuffer = &buf
	}
	return dto
}

func toAttributeDTO(a generic.Attribute) AttributeDTO {
	return AttributeDTO{
		ID:         a.ID,
		Name:       a.Name,
		Constraint: factory.ConstraintJSON{Type: a.ConstraintType, Config: a.Config},
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
	}
}

func toUserDTO(u generic.DirectoryUser) UserDTO {
	return UserDTO{ID: u.ID, Name: u.Name, Email: u.Email}
}
