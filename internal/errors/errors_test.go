package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := NewWithDetails(http.StatusBadRequest, "INVALID_PARAMETER", "top must be positive", map[string]int{"top": 0})

	assert.Equal(t, "top must be positive", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)

	var target *APIError
	wrapped := fmt.Errorf("parse query: %w", err)
	require.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "INVALID_PARAMETER", target.ErrorCode)
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err    *APIError
		status int
		code   string
	}{
		{ErrMissingFile, http.StatusBadRequest, "MISSING_FILE"},
		{ErrUnsupportedFormat, http.StatusBadRequest, "UNSUPPORTED_FORMAT"},
		{ErrSectionUnavailable, http.StatusNotFound, "SECTION_UNAVAILABLE"},
		{UnreadableUpload(errors.New("bare quote")), http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY"},
		{InvalidRequestWithError(errors.New("EOF")), http.StatusBadRequest, "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.Equal(t, tt.code, tt.err.ErrorCode)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestHelperConstructors(t *testing.T) {
	validation := ErrValidation("top", "must be positive")
	assert.Equal(t, ValidationError{Field: "top", Message: "must be positive"}, validation.Details)

	invalid := InvalidRequestWithError(errors.New("multipart: NextPart: EOF"))
	assert.Equal(t, "multipart: NextPart: EOF", invalid.Details)

	unreadable := UnreadableUpload(errors.New("bare quote"))
	assert.Equal(t, http.StatusUnprocessableEntity, unreadable.StatusCode)
}

func TestProblemDetails_Write(t *testing.T) {
	rec := httptest.NewRecorder()
	NewProblemDetails(http.StatusTooManyRequests, TypeRateLimit, "Too Many Requests", "slow down", "/api/v1/reports").
		WithExtension("retry_after", 2).
		Write(rec)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TypeRateLimit, body["type"])
	assert.Equal(t, float64(2), body["retry_after"])
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusNotFound, TypeSectionUnavailable, "Not Found", "no multi-menu contracts", "/api/v1/reports/exports/multiple-menu").
		WithExtension("trace_id", "abc").
		WithExtension("type", "ignored")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))

	// standard members win over extensions with the same key
	assert.Equal(t, TypeSectionUnavailable, body["type"])
	assert.Equal(t, "abc", body["trace_id"])
	assert.Equal(t, float64(404), body["status"])
	assert.Equal(t, "no multi-menu contracts", body["detail"])
}

func TestProblemDetails_OmitsEmptyMembers(t *testing.T) {
	data, err := json.Marshal(&ProblemDetails{Type: TypeInternal, Title: "Internal Server Error", Status: 500})
	require.NoError(t, err)

	assert.NotContains(t, string(data), "detail")
	assert.NotContains(t, string(data), "instance")
}
