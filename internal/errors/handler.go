package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"strings"

	"github.com/go-chi/render"

	"contractreport/internal/infrastructure"
)

// RFC 7807 problem type URIs
const (
	TypeValidation       = "/errors/validation"
	TypeNotFound         = "/errors/not-found"
	TypeRateLimit        = "/errors/rate-limit"
	TypeInternal         = "/errors/internal"
	TypeTimeout          = "/errors/timeout"
	TypePayloadTooLarge  = "/errors/payload-too-large"
	TypeMethodNotAllowed = "/errors/method-not-allowed"

	TypeUploadUnreadable   = "/errors/upload/unreadable"
	TypeUploadUnsupported  = "/errors/upload/unsupported-format"
	TypeUploadMissing      = "/errors/upload/missing-file"
	TypeSectionUnavailable = "/errors/report/section-unavailable"
)

const internalDetail = "An unexpected error occurred while processing your request"

// problemTypeByCode maps APIError codes to problem types. Unlisted codes
// are reported as internal.
var problemTypeByCode = map[string]string{
	CodeInvalidRequest:     TypeValidation,
	CodeValidationFailed:   TypeValidation,
	CodeMissingFile:        TypeUploadMissing,
	CodeUnsupportedFormat:  TypeUploadUnsupported,
	CodeUnreadableUpload:   TypeUploadUnreadable,
	CodeNotFound:           TypeNotFound,
	CodeSectionUnavailable: TypeSectionUnavailable,
}

// ErrorHandler turns handler errors into problem responses and logs them
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates an ErrorHandler. includeStack adds a goroutine
// stack to 5xx responses and is meant for debug deployments only.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError writes err as a problem response. A nil err writes nothing.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	problem := h.ErrorToProblem(err, r).
		WithExtension("trace_id", infrastructure.GetTraceID(r.Context()))

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
		if h.includeStack {
			problem.WithExtension("stack", stackTrace())
		}
	}
	h.logger.LogAttrs(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("remote_addr", r.RemoteAddr),
	)

	render.Render(w, r, problem)
}

// ErrorToProblem classifies err. Checks run from the most specific kind
// of error to plain message matching.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	path := r.URL.Path

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout, "Request Timeout",
			"The request took too long to process and was cancelled", path)
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return NewProblemDetails(http.StatusRequestEntityTooLarge, TypePayloadTooLarge, "Payload Too Large",
			fmt.Sprintf("The uploaded file exceeds the limit of %d bytes", maxBytesErr.Limit), path).
			WithExtension("limit_bytes", maxBytesErr.Limit)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		typ, ok := problemTypeByCode[apiErr.ErrorCode]
		if !ok {
			typ = TypeInternal
		}
		problem := NewProblemDetails(apiErr.StatusCode, typ, http.StatusText(apiErr.StatusCode), apiErr.Message, path).
			WithExtension("error_code", apiErr.ErrorCode)
		if apiErr.Details != nil {
			problem.WithExtension("details", apiErr.Details)
		}
		return problem
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErrorProblem(appErr, path)
	}

	if strings.Contains(err.Error(), "not found") {
		return NewProblemDetails(http.StatusNotFound, TypeNotFound, "Resource Not Found", err.Error(), path)
	}
	return NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error", internalDetail, path)
}

func appErrorProblem(appErr *AppError, path string) *ProblemDetails {
	var problem *ProblemDetails
	if appErr.Type == ErrTypeParsing {
		problem = NewProblemDetails(http.StatusUnprocessableEntity, TypeUploadUnreadable, "Unreadable Upload", appErr.Error(), path)
	} else {
		// storage failures are server side and keep their cause out of the response
		problem = NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error", internalDetail, path)
	}

	problem.WithExtension("error_type", string(appErr.Type))
	for k, v := range appErr.Context {
		problem.WithExtension(k, v)
	}
	return problem
}

// NotFound is the router's fallback for unknown paths
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeRouting(w, r, http.StatusNotFound, TypeNotFound, "The requested resource was not found")
}

// MethodNotAllowed is the router's fallback for known paths with the wrong method
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.writeRouting(w, r, http.StatusMethodNotAllowed, TypeMethodNotAllowed,
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method))
}

func (h *ErrorHandler) writeRouting(w http.ResponseWriter, r *http.Request, status int, typ, detail string) {
	problem := NewProblemDetails(status, typ, http.StatusText(status), detail, r.URL.Path).
		WithExtension("trace_id", infrastructure.GetTraceID(r.Context()))
	render.Render(w, r, problem)
}

func stackTrace() string {
	buf := make([]byte, 8<<10)
	return string(buf[:runtime.Stack(buf, false)])
}
