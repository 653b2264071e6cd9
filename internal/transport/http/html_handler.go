package http

import (
	"bytes"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"contractreport/internal/config"
	apierrors "contractreport/internal/errors"
	"contractreport/internal/services"
	"contractreport/pkg/contracts/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// dashboardView is the data behind templates/dashboard.html
type dashboardView struct {
	Title            string
	Version          string
	TopN             int
	Menus            string
	Error            string
	Report           *domain.ContractReport
	MultiMenuNotices []string
	Rankings         []rankingView
	Downloads        []downloadLink
}

type rankingView struct {
	Menu   string
	NoData bool
	Rows   []barRow
}

type barRow struct {
	Rank      int
	Branch    string
	Contracts int
	Percent   int
}

type downloadLink struct {
	Filename string
	Href     template.URL
}

// DashboardHandler serves the upload form and renders reports as HTML
type DashboardHandler struct {
	service        ReportServiceInterface
	maxUploadBytes int64
	tmpl           *template.Template
	logger         *slog.Logger
}

// NewDashboardHandler parses the embedded templates
func NewDashboardHandler(service ReportServiceInterface, maxUploadBytes int64, logger *slog.Logger) (*DashboardHandler, error) {
	tmpl, err := template.New("dashboard.html").Funcs(template.FuncMap{
		"timestamp": func(t domain.Timestamp) string {
			if !t.Valid {
				return ""
			}
			return t.Time.Format("2006-01-02 15:04:05")
		},
		"value": func(v domain.Value) string { return v.Or("") },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard templates: %w", err)
	}

	return &DashboardHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		tmpl:           tmpl,
		logger:         logger.With(slog.String("component", "dashboard_handler")),
	}, nil
}

// Index handles GET /
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, h.baseView())
}

// Dashboard handles POST /dashboard
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	view := h.baseView()

	file, header, err := readUpload(w, r, h.maxUploadBytes)
	if err != nil {
		h.fail(w, r, view, err)
		return
	}
	defer file.Close()
	defer r.MultipartForm.RemoveAll()

	opts := services.AnalyzeOptions{}
	if v := strings.TrimSpace(r.FormValue("top")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.fail(w, r, view, apierrors.ErrValidation("top", "top must be a positive integer"))
			return
		}
		opts.TopN = n
		view.TopN = n
	}
	if menus := splitLines(r.FormValue("menus")); len(menus) > 0 {
		opts.TargetMenus = menus
		view.Menus = strings.Join(menus, "\n")
	}

	report, err := h.service.Analyze(r.Context(), header.Filename, file, opts)
	if err != nil {
		h.fail(w, r, view, mapServiceError(err))
		return
	}
	view.Report = report

	for _, n := range report.Notices {
		if n.Section == domain.SectionMultiMenu {
			view.MultiMenuNotices = append(view.MultiMenuNotices, n.Message)
		}
	}
	view.Rankings = rankingViews(report.TopBranches)

	artifacts, err := h.service.Artifacts(r.Context(), report)
	if err != nil {
		h.fail(w, r, view, err)
		return
	}
	workbook, err := h.service.Workbook(r.Context(), report)
	if err != nil {
		h.fail(w, r, view, err)
		return
	}
	for _, att := range append(artifacts, workbook) {
		view.Downloads = append(view.Downloads, downloadLink{
			Filename: att.Filename,
			Href:     dataURI(att),
		})
	}

	h.render(w, r, http.StatusOK, view)
}

func (h *DashboardHandler) baseView() dashboardView {
	opts := h.service.Options()
	return dashboardView{
		Title:   config.AppName,
		Version: config.AppVersion,
		TopN:    opts.TopN,
		Menus:   strings.Join(opts.TargetMenus, "\n"),
	}
}

// fail renders the form again with the error message shown once
func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, view dashboardView, err error) {
	status, msg := describeError(err)
	h.logger.WarnContext(r.Context(), "dashboard request failed",
		slog.Int("status", status),
		slog.String("error", err.Error()))

	view.Error = msg
	view.Report = nil
	h.render(w, r, status, view)
}

func (h *DashboardHandler) render(w http.ResponseWriter, r *http.Request, status int, view dashboardView) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "dashboard.html", view); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render dashboard", slog.String("error", err.Error()))
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// describeError picks the status and user message for an error page
func describeError(err error) (int, string) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge,
			fmt.Sprintf("The uploaded file exceeds the limit of %d bytes", maxErr.Limit)
	}

	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		if detail, ok := apiErr.Details.(string); ok && detail != "" {
			return apiErr.StatusCode, apiErr.Message + ": " + detail
		}
		if vErr, ok := apiErr.Details.(apierrors.ValidationError); ok {
			return apiErr.StatusCode, vErr.Message
		}
		return apiErr.StatusCode, apiErr.Message
	}

	if apierrors.IsType(err, apierrors.ErrTypeParsing) {
		return http.StatusUnprocessableEntity, "The uploaded file could not be read: " + err.Error()
	}
	return http.StatusInternalServerError, "An unexpected error occurred while processing your request"
}

func rankingViews(rankings []domain.BranchRanking) []rankingView {
	out := make([]rankingView, 0, len(rankings))
	for _, ranking := range rankings {
		rv := rankingView{Menu: ranking.Menu, NoData: ranking.NoData}
		max := 0
		for _, b := range ranking.Branches {
			if b.Contracts > max {
				max = b.Contracts
			}
		}
		for i, b := range ranking.Branches {
			pct := 0
			if max > 0 {
				pct = b.Contracts * 100 / max
			}
			rv.Rows = append(rv.Rows, barRow{Rank: i + 1, Branch: b.Branch, Contracts: b.Contracts, Percent: pct})
		}
		out = append(out, rv)
	}
	return out
}

func dataURI(att *services.Attachment) template.URL {
	mediaType := att.ContentType
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return template.URL("data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(att.Data))
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
