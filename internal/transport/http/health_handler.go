package http

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/render"

	"contractreport/internal/services"
)

// retryAfterSeconds is advertised while the config or telemetry check fails
const retryAfterSeconds = "5"

// HealthHandler serves the status endpoints of the report service. Load
// balancers poll them between uploads, so nothing here touches an upload or
// the report engine.
type HealthHandler struct {
	service *services.HealthService
	logger  *slog.Logger
}

// NewHealthHandler wraps the service that owns the readiness checks
// registered at startup (config and telemetry).
func NewHealthHandler(service *services.HealthService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "health")),
	}
}

// HealthCheck reports that the process is up and which build it runs
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, h.service.HealthCheck(r.Context()))
}

// ReadinessCheck answers 503 until every startup check passes, so no upload
// is routed to an instance whose exporters are not wired yet.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := h.service.ReadinessCheck(r.Context())
	if status.Status != "ready" {
		h.logger.WarnContext(r.Context(), "service not ready",
			slog.Any("failing", failingChecks(status)))
		w.Header().Set("Retry-After", retryAfterSeconds)
		render.Status(r, http.StatusServiceUnavailable)
	}
	h.write(w, r, status)
}

// LivenessCheck never runs the readiness checks
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, h.service.LivenessCheck(r.Context()))
}

// Version reports the release and report format of this binary
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, h.service.Version())
}

func (h *HealthHandler) write(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("Cache-Control", "no-store")
	render.JSON(w, r, v)
}

func failingChecks(status services.HealthStatus) []string {
	var names []string
	for name, s := range status.Services {
		if s.Status != "ready" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
