package errors

import (
	"net/http"

	"github.com/go-chi/render"
)

// Error codes carried in APIError.ErrorCode and echoed as the error_code
// extension of a problem response.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeMissingFile        = "MISSING_FILE"
	CodeUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	CodeUnreadableUpload   = "UNPROCESSABLE_ENTITY"
	CodeNotFound           = "NOT_FOUND"
	CodeSectionUnavailable = "SECTION_UNAVAILABLE"
)

// APIError is an error raised by a handler that already knows its status
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError names the request field that failed validation
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates an APIError without details
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message}
}

// NewWithDetails creates an APIError carrying details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	e := New(statusCode, errorCode, message)
	e.Details = details
	return e
}

// Upload and export failures shared by the JSON API and the dashboard.
var (
	ErrMissingFile        = New(http.StatusBadRequest, CodeMissingFile, "A file must be uploaded in the \"file\" form field")
	ErrUnsupportedFormat  = New(http.StatusBadRequest, CodeUnsupportedFormat, "Only .csv and .xlsx files are supported")
	ErrSectionUnavailable = New(http.StatusNotFound, CodeSectionUnavailable, "The requested report section has no data for this upload")
)

// InvalidRequestWithError reports a malformed request body
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// ErrValidation reports one invalid field
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed",
		ValidationError{Field: field, Message: message})
}

// UnreadableUpload reports a file that was accepted but could not be loaded
func UnreadableUpload(err error) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, CodeUnreadableUpload, "The uploaded file could not be read", err.Error())
}
