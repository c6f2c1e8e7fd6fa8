/*
handlers_test.go - HTTP tests for API handlers

Tests for:
- Stateless value operations (format, input, step, compare, condition)
- Attribute lifecycle (create, duplicate, records, ordering, query)
- Current user resolution from X-User-Email
- Metrics exposure
*/
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/value-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) http.Handler {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewRouter(NewHandler(store, nil), nil)
}

func do(t *testing.T, srv http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createAttribute(t *testing.T, srv http.Handler, body string) AttributeDTO {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/attributes", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[AttributeDTO](t, rec)
}

// =============================================================================
// VALUE ENDPOINTS
// =============================================================================

func TestListConstraintTypes(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/constraints", "")
	require.Equal(t, http.StatusOK, rec.Code)

	types := decodeBody[[]ConstraintTypeDTO](t, rec)
	byType := map[string]string{}
	for _, ct := range types {
		byType[string(ct.Type)] = string(ct.Category)
	}
	assert.Equal(t, "orderable", byType["Duration"])
	assert.Equal(t, "set", byType["User"])
	assert.Equal(t, "text", byType["Text"])
}

func TestFormatValue_Duration(t *testing.T) {
	// GIVEN: A Work duration and the input "8w20m"
	// WHEN: Formatting it
	// THEN: Display is "8w20m" and the serialized form is milliseconds

	srv := newTestServer(t)
	rec := do(t, srv, http.MethodPost, "/api/values/format",
		`{"constraint":{"type":"Duration","config":{"type":"Work"}},"value":"8w20m"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	v := decodeBody[ValueDTO](t, rec)
	assert.Equal(t, "8w20m", v.Format)
	assert.True(t, v.Valid)
	assert.Equal(t, "1153200000", v.Serialized.String())

	rec = do(t, srv, http.MethodPost, "/api/values/format",
		`{"constraint":{"type":"Duration"},"value":"2w3d4h","max_units":2}`)
	assert.Equal(t, "2w3d", decodeBody[ValueDTO](t, rec).Format)
}

func TestFormatValue_InvalidEchoesInput(t *testing.T) {
	srv := newTestServer(t)
	rec := do(t, srv, http.MethodPost, "/api/values/format",
		`{"constraint":{"type":"Number"},"value":"abc"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	v := decodeBody[ValueDTO](t, rec)
	assert.False(t, v.Valid)
	assert.False(t, v.Parsable)
	assert.Equal(t, "abc", v.Format)
}

func TestFormatValue_HugeExponentIsInvalid(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []string{
		`{"constraint":{"type":"Number"},"value":1e5000000}`,
		`{"constraint":{"type":"Number"},"value":"1e5000000"}`,
	} {
		rec := do(t, srv, http.MethodPost, "/api/values/format", body)
		require.Equal(t, http.StatusOK, rec.Code)

		v := decodeBody[ValueDTO](t, rec)
		assert.False(t, v.Valid, body)
		assert.Equal(t, "1e5000000", v.Format, body)
	}
}

func TestFormatValue_Errors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed body", `{`, http.StatusBadRequest},
		{"unknown type", `{"constraint":{"type":"Money"},"value":1}`, http.StatusBadRequest},
		{"bad config", `{"constraint":{"type":"Duration","config":{"conversions":{"days":0}}},"value":1}`, http.StatusBadRequest},
		{"decimals above cap", `{"constraint":{"type":"Percentage","config":{"decimals":100000}},"value":1}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/values/format", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.NotEmpty(t, decodeBody[ErrorResponse](t, rec).Error)
		})
	}
}

func TestParseInput_KeepsEditBuffer(t *testing.T) {
	srv := newTestServer(t)
	rec := do(t, srv, http.MethodPost, "/api/values/input",
		`{"constraint":{"type":"Percentage"},"text":"66.66%"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	v := decodeBody[ValueDTO](t, rec)
	require.NotNil(t, v.EditBuffer)
	assert.Equal(t, "66.66%", *v.EditBuffer)
	assert.Equal(t, "66.66%", v.Format)
	assert.Equal(t, "0.67", v.Serialized.String())
}

func TestStepValue(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/values/step",
		`{"constraint":{"type":"Number"},"value":41,"direction":"up"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[StepResponse](t, rec)
	require.NotNil(t, resp.Value)
	assert.Equal(t, "42", resp.Value.Format)

	rec = do(t, srv, http.MethodPost, "/api/values/step",
		`{"constraint":{"type":"Text"},"value":"x","direction":"down"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeBody[StepResponse](t, rec).Value, "text has no predecessor")

	rec = do(t, srv, http.MethodPost, "/api/values/step",
		`{"constraint":{"type":"Number"},"value":1,"direction":"sideways"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompareValues(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/values/compare",
		`{"constraint":{"type":"Duration"},"a":"1d","b":"7h"}`)
	resp := decodeBody[CompareResponse](t, rec)
	assert.Equal(t, 1, resp.Result)
	assert.True(t, resp.Orderable)

	rec = do(t, srv, http.MethodPost, "/api/values/compare",
		`{"constraint":{"type":"User","config":{"multi":true,"externalUsers":true}},"a":["a@x.com"],"b":["b@x.com"]}`)
	resp = decodeBody[CompareResponse](t, rec)
	assert.Equal(t, 0, resp.Result)
	assert.False(t, resp.Orderable)
}

func TestEvaluateCondition(t *testing.T) {
	// GIVEN: A cell holding a@x.com and other@x.com
	// WHEN: Evaluating hasNoneOf [lala@x.com, other@x.com]
	// THEN: Not met

	srv := newTestServer(t)
	rec := do(t, srv, http.MethodPost, "/api/values/condition", `{
		"constraint": {"type":"User","config":{"multi":true,"externalUsers":true}},
		"value": ["a@x.com","other@x.com"],
		"condition": "hasNoneOf",
		"operands": [{"value":["lala@x.com","other@x.com"]}]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, decodeBody[MatchResponse](t, rec).Met)
}

func TestEvaluateCondition_CurrentUserHeader(t *testing.T) {
	srv := newTestServer(t)
	body := `{
		"constraint": {"type":"User","config":{"externalUsers":true}},
		"value": "me@x.com",
		"condition": "hasSome",
		"operands": [{"type":"currentUser"}]
	}`

	rec := do(t, srv, http.MethodPost, "/api/values/condition", body, CurrentUserHeader, "ME@x.com")
	assert.True(t, decodeBody[MatchResponse](t, rec).Met)

	rec = do(t, srv, http.MethodPost, "/api/values/condition", body)
	assert.False(t, decodeBody[MatchResponse](t, rec).Met, "no current user")
}

func TestEvaluateFullText(t *testing.T) {
	srv := newTestServer(t)
	rec := do(t, srv, http.MethodPost, "/api/values/fulltext",
		`{"constraint":{"type":"Text"},"value":"Žluťoučký kůň","needles":["kun","zlut"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[MatchResponse](t, rec).Met)
}

// =============================================================================
// ATTRIBUTES
// =============================================================================

func TestAttributes_CreateAndGet(t *testing.T) {
	srv := newTestServer(t)

	attr := createAttribute(t, srv, `{"name":"effort","constraint":{"type":"Duration","config":{"type":"Classic"}}}`)
	assert.NotEmpty(t, attr.ID)
	assert.Equal(t, "Duration", string(attr.Constraint.Type))
	assert.JSONEq(t, `{"type":"Classic"}`, string(attr.Constraint.Config))

	rec := do(t, srv, http.MethodGet, "/api/attributes/"+attr.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "effort", decodeBody[AttributeDTO](t, rec).Name)

	rec = do(t, srv, http.MethodGet, "/api/attributes/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/attributes", `{"name":"effort","constraint":{"type":"Text"}}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/attributes", `{"name":" ","constraint":{"type":"Text"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/attributes", "")
	assert.Len(t, decodeBody[[]AttributeDTO](t, rec), 1)
}

func TestRecords_PercentageRange(t *testing.T) {
	// GIVEN: A percentage attribute limited to 0..100
	// WHEN: Storing 66.66% and 150%
	// THEN: The first is stored as "0.67", the second is rejected

	srv := newTestServer(t)
	attr := createAttribute(t, srv, `{"name":"done","constraint":{"type":"Percentage","config":{"minValue":0,"maxValue":100}}}`)
	path := "/api/attributes/" + attr.ID + "/records"

	rec := do(t, srv, http.MethodPost, path, `{"value":"66.66%"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	stored := decodeBody[RecordDTO](t, rec)
	assert.Equal(t, "0.67", stored.Value.Raw.String())
	assert.Equal(t, "67%", stored.Value.Format)

	rec = do(t, srv, http.MethodPost, path, `{"value":"150%"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/attributes/missing/records", `{"value":"1%"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecords_ListedInValueOrder(t *testing.T) {
	srv := newTestServer(t)
	attr := createAttribute(t, srv, `{"name":"effort","constraint":{"type":"Duration"}}`)
	path := "/api/attributes/" + attr.ID + "/records"

	for _, v := range []string{`"1w"`, `"2h"`, `"1d"`} {
		rec := do(t, srv, http.MethodPost, path, `{"value":`+v+`}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := do(t, srv, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	records := decodeBody[[]RecordDTO](t, rec)
	require.Len(t, records, 3)

	var got []string
	for _, r := range records {
		got = append(got, r.Value.Format)
	}
	assert.Equal(t, []string{"2h", "1d", "1w"}, got)
}

func TestRecords_Query(t *testing.T) {
	srv := newTestServer(t)
	attr := createAttribute(t, srv,
		`{"name":"status","constraint":{"type":"Select","config":{"options":[{"value":"open","label":"Open"},{"value":"done","label":"Done"}]}}}`)
	path := "/api/attributes/" + attr.ID

	for _, v := range []string{"open", "done", "open"} {
		rec := do(t, srv, http.MethodPost, path+"/records", `{"value":"`+v+`"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := do(t, srv, http.MethodPost, path+"/query", `{"condition":"in","operands":[{"value":"open"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decodeBody[[]RecordDTO](t, rec), 2)

	rec = do(t, srv, http.MethodPost, path+"/query", `{"fulltext":["don"]}`)
	assert.Len(t, decodeBody[[]RecordDTO](t, rec), 1)

	rec = do(t, srv, http.MethodPost, path+"/query", `{"condition":"notEmpty","fulltext":["nothing"]}`)
	assert.Empty(t, decodeBody[[]RecordDTO](t, rec))
}

// =============================================================================
// USERS
// =============================================================================

func TestUsers_DirectoryResolvesReferences(t *testing.T) {
	// GIVEN: A directory with Anna
	// WHEN: Formatting a user value holding her email
	// THEN: Her name is shown; unknown emails are invalid without externalUsers

	srv := newTestServer(t)
	rec := do(t, srv, http.MethodPost, "/api/users", `{"name":"Anna Nováková","email":"anna@x.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, srv, http.MethodPost, "/api/users", `{"name":"Nobody","email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/users", "")
	assert.Len(t, decodeBody[[]UserDTO](t, rec), 1)

	rec = do(t, srv, http.MethodPost, "/api/values/format", `{"constraint":{"type":"User"},"value":"anna@x.com"}`)
	v := decodeBody[ValueDTO](t, rec)
	assert.True(t, v.Valid)
	assert.Equal(t, "Anna Nováková", v.Format)

	rec = do(t, srv, http.MethodPost, "/api/values/format", `{"constraint":{"type":"User"},"value":"ghost@x.com"}`)
	assert.False(t, decodeBody[ValueDTO](t, rec).Valid)
}

// =============================================================================
// METRICS
// =============================================================================

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodPost, "/api/values/condition",
		`{"constraint":{"type":"Number"},"value":5,"condition":"gt","operands":[{"value":3}]}`)

	rec := do(t, srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body,
		`value_engine_condition_evaluations_total{condition="gt",constraint="Number",met="true"} 1`), body)
}
