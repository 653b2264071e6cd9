package http

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "contractreport/internal/errors"
	"contractreport/internal/exporter"
	"contractreport/internal/middleware"
	"contractreport/internal/services"
	"contractreport/pkg/contracts/domain"
)

// multipartMemory is the part of an upload kept in memory, the rest spills
// to a temporary file
const multipartMemory = 8 << 20

// uploadParams are the validated inputs of an upload request
type uploadParams struct {
	Filename string   `json:"filename" validate:"required,filename"`
	Top      int      `json:"top" validate:"gte=0,lte=1000"`
	Menus    []string `json:"menu" validate:"max=50,dive,max=200"`
}

// ReportResponse wraps a report in the API envelope
type ReportResponse struct {
	Status    string                 `json:"status"`
	Data      *domain.ContractReport `json:"data"`
	Artifacts []ArtifactLink         `json:"artifacts"`
}

// ArtifactLink names a CSV export available for the report
type ArtifactLink struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
	Href     string `json:"href"`
}

// ReportHandler handles report uploads and exports with RFC 7807 errors
type ReportHandler struct {
	service        ReportServiceInterface
	validator      *middleware.RequestValidator
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportServiceInterface, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:        service,
		validator:      middleware.NewRequestValidator(logger),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "report_handler")),
	}
}

// Routes returns the report routes. Every route takes a multipart upload in
// the "file" field.
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.ContentTypeValidator("multipart/form-data"))

	r.Post("/", h.Analyze)
	r.Post("/workbook", h.Workbook)
	r.With(h.ArtifactCtx).Post("/exports/{artifact}", h.Export)

	return r
}

// ArtifactCtx rejects unknown artifact names before the upload is read
func (h *ReportHandler) ArtifactCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "artifact")
		if _, err := exporter.ParseArtifact(name); err != nil {
			h.errorHandler.HandleError(w, r, unknownArtifact(name))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Analyze handles POST /api/v1/reports
func (h *ReportHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	report, ok := h.analyze(w, r)
	if !ok {
		return
	}

	available := exporter.Available(report)
	links := make([]ArtifactLink, 0, len(available))
	for _, a := range available {
		links = append(links, ArtifactLink{
			Name:     string(a),
			Filename: a.Filename(),
			Href:     "/api/v1/reports/exports/" + string(a),
		})
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, ReportResponse{
		Status:    "success",
		Data:      report,
		Artifacts: links,
	})
}

// Export handles POST /api/v1/reports/exports/{artifact}
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	report, ok := h.analyze(w, r)
	if !ok {
		return
	}

	att, err := h.service.ArtifactCSV(r.Context(), report, chi.URLParam(r, "artifact"))
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	writeAttachment(w, att)
}

// Workbook handles POST /api/v1/reports/workbook
func (h *ReportHandler) Workbook(w http.ResponseWriter, r *http.Request) {
	report, ok := h.analyze(w, r)
	if !ok {
		return
	}

	att, err := h.service.Workbook(r.Context(), report)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	writeAttachment(w, att)
}

// analyze reads and validates the upload, then builds its report. Failures
// are written to w.
func (h *ReportHandler) analyze(w http.ResponseWriter, r *http.Request) (*domain.ContractReport, bool) {
	reqID := middleware.GetReqID(r.Context())

	file, header, err := readUpload(w, r, h.maxUploadBytes)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}
	defer file.Close()
	defer r.MultipartForm.RemoveAll()

	top, err := middleware.QueryInt(r, "top", 0)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	params := uploadParams{
		Filename: header.Filename,
		Top:      top,
		Menus:    middleware.QueryList(r, "menu"),
	}
	if err := h.validator.ValidateStruct(params); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	h.logger.InfoContext(r.Context(), "upload received",
		slog.String("request_id", reqID),
		slog.String("filename", params.Filename),
		slog.Int64("size", header.Size),
		slog.Int("top", params.Top),
		slog.Int("menus", len(params.Menus)))

	report, err := h.service.Analyze(r.Context(), params.Filename, file, services.AnalyzeOptions{
		TopN:        params.Top,
		TargetMenus: params.Menus,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return nil, false
	}
	return report, true
}

// readUpload limits the request body and returns the "file" form part
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, nil, maxErr
		}
		return nil, nil, apierrors.InvalidRequestWithError(err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		r.MultipartForm.RemoveAll()
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, apierrors.ErrMissingFile
		}
		return nil, nil, apierrors.InvalidRequestWithError(err)
	}
	return file, header, nil
}

// writeAttachment sends an exported artifact as a download
func writeAttachment(w http.ResponseWriter, att *services.Attachment) {
	w.Header().Set("Content-Type", att.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": filepath.Base(att.Filename),
	}))
	w.Header().Set("Content-Length", strconv.Itoa(len(att.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(att.Data)
}

// mapServiceError translates service sentinels to API errors. Errors the
// error handler already understands pass through.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrUnsupportedFormat):
		return apierrors.NewWithDetails(http.StatusBadRequest, apierrors.CodeUnsupportedFormat,
			apierrors.ErrUnsupportedFormat.Message, err.Error())
	case errors.Is(err, services.ErrEmptyUpload):
		return apierrors.UnreadableUpload(err)
	case errors.Is(err, services.ErrInvalidInput):
		return apierrors.InvalidRequestWithError(err)
	case errors.Is(err, services.ErrUnknownArtifact):
		return apierrors.NewWithDetails(http.StatusNotFound, apierrors.CodeNotFound, "Unknown artifact", err.Error())
	case errors.Is(err, services.ErrSectionUnavailable):
		return apierrors.NewWithDetails(http.StatusNotFound, apierrors.CodeSectionUnavailable,
			apierrors.ErrSectionUnavailable.Message, err.Error())
	default:
		return err
	}
}

func unknownArtifact(name string) *apierrors.APIError {
	names := make([]string, len(exporter.Artifacts))
	for i, a := range exporter.Artifacts {
		names[i] = string(a)
	}
	return apierrors.NewWithDetails(http.StatusNotFound, "NOT_FOUND",
		fmt.Sprintf("Unknown artifact %q", name),
		map[string]interface{}{"available": names})
}
