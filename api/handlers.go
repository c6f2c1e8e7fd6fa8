/*
handlers.go - HTTP API handlers for the value engine

PURPOSE:
  Exposes constraint-typed values via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the variants.

ENDPOINTS:
  Values (stateless, the constraint travels with the request):
    GET    /api/constraints            Registered constraint types
    POST   /api/values/format          Format a raw value
    POST   /api/values/input           Parse literal keystrokes
    POST   /api/values/step            Increment / decrement
    POST   /api/values/compare         Compare two raw values
    POST   /api/values/condition       Evaluate a condition
    POST   /api/values/fulltext        Evaluate full-text needles

  Attributes:
    GET    /api/attributes             List attribute definitions
    POST   /api/attributes             Create an attribute
    GET    /api/attributes/{id}        Get one attribute
    POST   /api/attributes/{id}/records Validate and store a value
    GET    /api/attributes/{id}/records Stored values, in value order
    POST   /api/attributes/{id}/query   Filter stored values

  Users:
    GET    /api/users                  User directory
    POST   /api/users                  Add or rename a user

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Attribute, record and user persistence
  - Factory: JSON to Constraint conversion
  - Letters: the deployment's duration unit letters

  Constraints are rebuilt per request: the environment they capture (user
  directory, current user) changes between requests.

REQUEST FLOW:
  1. Parse HTTP request
  2. Build the environment (X-User-Email header + user directory)
  3. Build the constraint and the value
  4. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid body, invalid constraint config, invalid value
  - 404: Attribute not found
  - 409: Duplicate attribute name
  - 500: Internal errors

SECURITY NOTE:
  No authentication. X-User-Email is trusted as-is.

SEE ALSO:
  - dto.go: Request/response data structures
  - metrics.go: Prometheus counters
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/value-engine/factory"
	"github.com/warp/value-engine/generic"
)

// CurrentUserHeader carries the email of the user making the request.
const CurrentUserHeader = "X-User-Email"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   generic.AttributeStore
	Factory *factory.ConstraintFactory
	Metrics *Metrics

	// Letters localizes duration unit letters. Nil keeps w/d/h/m/s.
	Letters func(unit string) string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store generic.AttributeStore, letters func(unit string) string) *Handler {
	return &Handler{
		Store:   store,
		Factory: factory.NewConstraintFactory(),
		Metrics: NewMetrics(),
		Letters: letters,
	}
}

// environment assembles the collaborators a constraint needs for r.
func (h *Handler) environment(r *http.Request) (generic.Environment, error) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		return generic.Environment{}, err
	}
	return generic.Environment{
		CurrentUser: strings.TrimSpace(r.Header.Get(CurrentUserHeader)),
		Users:       users,
		UnitLetter:  h.Letters,
	}, nil
}

// constraint builds cj in the request's environment, writing the error
// response itself when it fails.
func (h *Handler) constraint(w http.ResponseWriter, r *http.Request, cj factory.ConstraintJSON) (generic.Constraint, bool) {
	env, err := h.environment(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user directory", err)
		return nil, false
	}
	c, err := h.Factory.FromJSON(cj, env)
	if err != nil {
		writeError(w, statusFor(err), "Invalid constraint configuration", err)
		return nil, false
	}
	return c, true
}

// =============================================================================
// VALUE HANDLERS
// =============================================================================

// ListConstraintTypes returns the registered constraint types.
func (h *Handler) ListConstraintTypes(w http.ResponseWriter, r *http.Request) {
	types := generic.ListConstraintTypes()
	dtos := make([]ConstraintTypeDTO, 0, len(types))
	for _, t := range types {
		c, err := generic.BuildConstraint(t, nil, generic.Environment{})
		if err != nil {
			// Types that need a config are listed without a category.
			dtos = append(dtos, ConstraintTypeDTO{Type: t})
			continue
		}
		dtos = append(dtos, ConstraintTypeDTO{Type: t, Category: c.Category()})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// FormatValue renders a raw value.
func (h *Handler) FormatValue(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	if !decode(w, r, &req) {
		return
	}
	c, ok := h.constraint(w, r, req.Constraint)
	if !ok {
		return
	}

	v := c.CreateValue(req.Value)
	dto := toValueDTO(v)
	if req.MaxUnits > 0 {
		dto.Format = v.FormatUnits(req.MaxUnits)
	}
	writeJSON(w, http.StatusOK, dto)
}

// ParseInput builds a value from literal keystrokes.
func (h *Handler) ParseInput(w http.ResponseWriter, r *http.Request) {
	var req InputRequest
	if !decode(w, r, &req) {
		return
	}
	c, ok := h.constraint(w, r, req.Constraint)
	if !ok {
		return
	}

	v := c.CreateValue(generic.Null()).ParseInput(req.Text)
	writeJSON(w, http.StatusOK, toValueDTO(v))
}

// StepValue increments or decrements a value.
func (h *Handler) StepValue(w http.ResponseWriter, r *http.Request) {
	var req StepRequest
	if !decode(w, r, &req) {
		return
	}

	var up bool
	switch req.Direction {
	case "up":
		up = true
	case "down":
	default:
		writeError(w, http.StatusBadRequest, "direction must be \"up\" or \"down\"", nil)
		return
	}

	c, ok := h.constraint(w, r, req.Constraint)
	if !ok {
		return
	}

	v := c.CreateValue(req.Value)
	next := v.Decrement()
	if up {
		next = v.Increment()
	}

	var resp StepResponse
	if next != nil {
		dto := toValueDTO(next)
		resp.Value = &dto
	}
	writeJSON(w, http.StatusOK, resp)
}

// CompareValues orders two raw values of one constraint.
func (h *Handler) CompareValues(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if !decode(w, r, &req) {
		return
	}
	c, ok := h.constraint(w, r, req.Constraint)
	if !ok {
		return
	}

	a := c.CreateValue(req.A)
	writeJSON(w, http.StatusOK, CompareResponse{
		Result:    a.CompareTo(c.CreateValue(req.B)),
		Orderable: generic.IsOrderable(a),
	})
}

// EvaluateCondition tests one value against a condition.
func (h *Handler) EvaluateCondition(w http.ResponseWriter, r *http.Request) {
	var req ConditionRequest
	if !decode(w, r, &req) {
		return
	}
	c, ok := h.constraint(w, r, req.Constraint)
	if !ok {
		return
	}

	met := c.CreateValue(req.Value).MeetCondition(req.Condition, req.Operands)
	h.Metrics.observeCondition(c.Type(), req.Condition, met)
	writeJSON(w, http.StatusOK, MatchResponse{Met: met})
}

// EvaluateFullText tests one value against search needles.
func (h *Handler) EvaluateFullText(w http.ResponseWriter, r *http.Request) {
	var req FullTextRequest
	if !decode(w, r, &req) {
		return
	}
	c, ok := h.constraint(w, r, req.Constraint)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, MatchResponse{Met: c.CreateValue(req.Value).MeetFullTexts(req.Needles)})
}

// =============================================================================
// ATTRIBUTE HANDLERS
// =============================================================================

// ListAttributes returns all attribute definitions.
func (h *Handler) ListAttributes(w http.ResponseWriter, r *http.Request) {
	attrs, err := h.Store.ListAttributes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list attributes", err)
		return
	}

	dtos := make([]AttributeDTO, len(attrs))
	for i, a := range attrs {
		dtos[i] = toAttributeDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAttribute validates a constraint definition and stores it.
func (h *Handler) CreateAttribute(w http.ResponseWriter, r *http.Request) {
	var req CreateAttributeRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	// Validate by building
	c, ok := h.constraint(w, r, req.Constraint)
	if !ok {
		return
	}
	cj, err := h.Factory.ToJSON(c)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode constraint", err)
		return
	}

	attr, err := h.Store.SaveAttribute(r.Context(), generic.Attribute{
		Name:           strings.TrimSpace(req.Name),
		ConstraintType: cj.Type,
		Config:         cj.Config,
	})
	if err != nil {
		writeError(w, statusFor(err), "Failed to create attribute", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAttributeDTO(attr))
}

// GetAttribute returns a single attribute.
func (h *Handler) GetAttribute(w http.ResponseWriter, r *http.Request) {
	attr, err := h.Store.GetAttribute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), "Failed to get attribute", err)
		return
	}
	writeJSON(w, http.StatusOK, toAttributeDTO(*attr))
}

// attributeConstraint loads the {id} attribute and builds its constraint.
func (h *Handler) attributeConstraint(w http.ResponseWriter, r *http.Request) (*generic.Attribute, generic.Constraint, bool) {
	attr, err := h.Store.GetAttribute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), "Failed to get attribute", err)
		return nil, nil, false
	}
	c, ok := h.constraint(w, r, factory.ConstraintJSON{Type: attr.ConstraintType, Config: attr.Config})
	if !ok {
		return nil, nil, false
	}
	return attr, c, true
}

// AppendRecord stores a value after checking it against the attribute's
// constraint. The stored form is Value.Serialize().
func (h *Handler) AppendRecord(w http.ResponseWriter, r *http.Request) {
	var req AppendRecordRequest
	if !decode(w, r, &req) {
		return
	}
	attr, c, ok := h.attributeConstraint(w, r)
	if !ok {
		return
	}

	v := c.CreateValue(req.Value)
	if !v.IsValid(false) {
		h.Metrics.observeInvalid(c.Type())
		err := &generic.InvalidValueError{AttributeID: attr.ID, Raw: req.Value, Display: v.Format()}
		writeError(w, statusFor(err), "Invalid value", err)
		return
	}

	rec, err := h.Store.AppendRecord(r.Context(), generic.Record{AttributeID: attr.ID, Value: v.Serialize()})
	if err != nil {
		writeError(w, statusFor(err), "Failed to store value", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordDTO(rec, c.CreateValue(rec.Value)))
}

// ListRecords returns stored values ordered by CompareTo. Unorderable
// constraints keep insertion order.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	attr, c, ok := h.attributeConstraint(w, r)
	if !ok {
		return
	}
	records, err := h.Store.ListRecords(r.Context(), attr.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list records", err)
		return
	}

	values := make([]generic.Value, len(records))
	for i, rec := range records {
		values[i] = c.CreateValue(rec.Value)
	}
	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return values[idx[i]].CompareTo(values[idx[j]]) < 0
	})

	dtos := make([]RecordDTO, len(records))
	for i, k := range idx {
		dtos[i] = toRecordDTO(records[k], values[k])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// QueryRecords returns the stored values matching a condition and/or
// full-text needles, in insertion order.
func (h *Handler) QueryRecords(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !decode(w, r, &req) {
		return
	}
	attr, c, ok := h.attributeConstraint(w, r)
	if !ok {
		return
	}
	records, err := h.Store.ListRecords(r.Context(), attr.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list records", err)
		return
	}

	dtos := []RecordDTO{}
	for _, rec := range records {
		v := c.CreateValue(rec.Value)
		if req.Condition != "" {
			met := v.MeetCondition(req.Condition, req.Operands)
			h.Metrics.observeCondition(c.Type(), req.Condition, met)
			if !met {
				continue
			}
		}
		if len(req.FullText) > 0 && !v.MeetFullTexts(req.FullText) {
			continue
		}
		dtos = append(dtos, toRecordDTO(rec, v))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// ListUsers returns the user directory.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}

	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateUser adds a user, or renames the user with the same email.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decode(w, r, &req) {
		return
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name and a valid email are required", err)
		return
	}

	u, err := h.Store.SaveUser(r.Context(), generic.DirectoryUser{
		Name:  strings.TrimSpace(req.Name),
		Email: addr.Address,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save user", err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(u))
}

// =============================================================================
// HELPERS
// =============================================================================

func toRecordDTO(rec generic.Record, v generic.Value) RecordDTO {
	return RecordDTO{
		ID:          rec.ID,
		AttributeID: rec.AttributeID,
		Value:       toValueDTO(v),
		CreatedAt:   rec.CreatedAt.Format(time.RFC3339),
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case generic.IsNotFound(err):
		return http.StatusNotFound
	case generic.IsConflict(err):
		return http.StatusConflict
	case generic.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
