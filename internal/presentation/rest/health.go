package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fraudshield/fraud-analyzer/internal/domain/model"
)

const serviceName = "fraud-analyzer"

// HealthHandler provides HTTP health check endpoints for the fraud analyzer.
type HealthHandler struct {
	startTime time.Time
	logger    *slog.Logger
	handle    *model.ModelHandle
}

// NewHealthHandler creates a new health check handler reporting on handle.
func NewHealthHandler(handle *model.ModelHandle, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		logger:    logger,
		handle:    handle,
		startTime: time.Now(),
	}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Uptime  string `json:"uptime"`
}

// ModelStatus describes the loaded artifact in readiness responses.
type ModelStatus struct {
	LoadedAt    *time.Time `json:"loaded_at,omitempty"`
	Source      string     `json:"source,omitempty"`
	Kind        string     `json:"kind,omitempty"`
	Capability  string     `json:"capability,omitempty"`
	Explain     string     `json:"explain"`
	NumFeatures int        `json:"n_features,omitempty"`
}

// ReadinessResponse is the JSON response for readiness checks.
type ReadinessResponse struct {
	Checks  map[string]string `json:"checks"`
	Model   ModelStatus       `json:"model"`
	Status  string            `json:"status"`
	Service string            `json:"service"`
}

// RegisterRoutes registers health endpoints on the provided ServeMux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// Healthz handles liveness probe requests.
func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: serviceName,
		Uptime:  time.Since(h.startTime).String(),
	})
}

// Readyz handles readiness probe requests. Heuristic mode is a valid serving
// mode, so the service is ready with or without a model.
func (h *HealthHandler) Readyz(w http.ResponseWriter, _ *http.Request) {
	status := ModelStatus{Explain: "heuristic"}
	checks := map[string]string{"model": "absent"}

	if h.handle.Present() {
		info := h.handle.Info()
		loadedAt := info.LoadedAt
		status = ModelStatus{
			Explain:     "model",
			Source:      info.Source,
			Kind:        info.Kind,
			Capability:  info.Capability,
			NumFeatures: info.NumFeatures,
			LoadedAt:    &loadedAt,
		}
		checks["model"] = "loaded"
	}

	writeJSON(w, http.StatusOK, ReadinessResponse{
		Status:  "ready",
		Service: serviceName,
		Checks:  checks,
		Model:   status,
	})
}
