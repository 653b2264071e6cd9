package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractreport/internal/infrastructure"
	"contractreport/internal/shared/testutil"
)

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantTitle  string
	}{
		{
			name:       "context deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
			wantTitle:  "Request Timeout",
		},
		{
			name:       "wrapped context canceled",
			err:        fmt.Errorf("run report: %w", context.Canceled),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
			wantTitle:  "Request Timeout",
		},
		{
			name:       "missing file",
			err:        ErrMissingFile,
			wantStatus: http.StatusBadRequest,
			wantType:   TypeUploadMissing,
			wantTitle:  "Bad Request",
		},
		{
			name:       "unsupported format",
			err:        ErrUnsupportedFormat,
			wantStatus: http.StatusBadRequest,
			wantType:   TypeUploadUnsupported,
			wantTitle:  "Bad Request",
		},
		{
			name:       "section unavailable",
			err:        ErrSectionUnavailable,
			wantStatus: http.StatusNotFound,
			wantType:   TypeSectionUnavailable,
			wantTitle:  "Not Found",
		},
		{
			name:       "upload too large",
			err:        fmt.Errorf("read upload: %w", &http.MaxBytesError{Limit: 1024}),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   TypePayloadTooLarge,
			wantTitle:  "Payload Too Large",
		},
		{
			name:       "parsing app error",
			err:        NewParsingError("failed to parse csv", fmt.Errorf("bare quote")),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeUploadUnreadable,
			wantTitle:  "Unreadable Upload",
		},
		{
			name:       "storage app error",
			err:        NewStorageError("failed to export report", fmt.Errorf("disk full")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantTitle:  "Internal Server Error",
		},
		{
			name:       "validation api error",
			err:        ErrValidation("top", "top must be positive"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantTitle:  "Bad Request",
		},
		{
			name:       "unknown api error code",
			err:        New(http.StatusConflict, "CONFLICT", "conflict"),
			wantStatus: http.StatusConflict,
			wantType:   TypeInternal,
			wantTitle:  "Conflict",
		},
		{
			name:       "plain not found error",
			err:        fmt.Errorf("artifact not found"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
			wantTitle:  "Resource Not Found",
		},
		{
			name:       "unknown error",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantTitle:  "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", nil)
			req = req.WithContext(infrastructure.WithTraceID(req.Context(), "trace-1"))
			rec := httptest.NewRecorder()

			handler.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, tt.wantTitle, body["title"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/v1/reports", body["instance"])
			assert.Equal(t, "trace-1", body["trace_id"])
			assert.NotContains(t, body, "stack")
		})
	}
}

func TestErrorHandler_HandleError_Nil(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	handler.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, 0, rec.Body.Len())
	assert.Equal(t, 0, logs.Count())
}

func TestErrorHandler_LogsByStatus(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)

	handler.HandleError(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil), ErrMissingFile)
	testutil.AssertLogContains(t, logs, slog.LevelWarn, "request failed")
	testutil.AssertLogAttr(t, logs, "component", "error_handler")

	rec := httptest.NewRecorder()
	handler.HandleError(rec, httptest.NewRequest(http.MethodPost, "/", nil), fmt.Errorf("boom"))
	testutil.AssertLogContains(t, logs, slog.LevelError, "request failed")

	// stack traces only for server errors
	assert.Contains(t, rec.Body.String(), `"stack"`)
}

func TestErrorHandler_APIErrorDetails(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", nil)
	problem := handler.ErrorToProblem(UnreadableUpload(fmt.Errorf("zip: not a valid zip file")), req)

	assert.Equal(t, http.StatusUnprocessableEntity, problem.Status)
	assert.Equal(t, TypeUploadUnreadable, problem.Type)
	assert.Equal(t, "UNPROCESSABLE_ENTITY", problem.Extensions["error_code"])
	assert.Equal(t, "zip: not a valid zip file", problem.Extensions["details"])
}

func TestErrorHandler_AppErrorContext(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	err := NewParsingError("no header row", nil).WithContext("source", "empty.csv")
	problem := handler.ErrorToProblem(err, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, "PARSING", problem.Extensions["error_type"])
	assert.Equal(t, "empty.csv", problem.Extensions["source"])
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	handler.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), TypeNotFound)

	rec = httptest.NewRecorder()
	handler.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/reports", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "Method DELETE is not allowed")
}

func TestErrorHandler_StorageCauseHidden(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	err := NewStorageError("failed to export report", fmt.Errorf("open /srv/out: permission denied")).
		WithContext("directory", "/srv/out")
	problem := handler.ErrorToProblem(err, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.NotContains(t, problem.Detail, "permission denied")
	assert.Equal(t, "STORAGE", problem.Extensions["error_type"])
	assert.Equal(t, "/srv/out", problem.Extensions["directory"])
}
