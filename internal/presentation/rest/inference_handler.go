package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fraudshield/fraud-analyzer/internal/application/dto"
	"github.com/fraudshield/fraud-analyzer/internal/application/usecase"
)

// InferenceHandler serves the scoring and rule endpoints.
type InferenceHandler struct {
	infer  *usecase.InferTransaction
	rules  *usecase.EvaluateRules
	logger *slog.Logger
}

// NewInferenceHandler creates a new inference handler.
func NewInferenceHandler(infer *usecase.InferTransaction, rules *usecase.EvaluateRules, logger *slog.Logger) *InferenceHandler {
	return &InferenceHandler{infer: infer, rules: rules, logger: logger}
}

// RegisterRoutes registers the API endpoints on the provided ServeMux.
func (h *InferenceHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /infer", h.Infer)
	mux.HandleFunc("POST /evaluate", h.Evaluate)
}

// Infer handles POST /infer.
func (h *InferenceHandler) Infer(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeInferRequest(r.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.infer.Execute(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Evaluate handles POST /evaluate.
func (h *InferenceHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeRuleRequest(r.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.rules.Execute(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeError maps validation failures to 422 and everything else to 500,
// carrying the error description as the detail.
func (h *InferenceHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *dto.ValidationError
	if errors.As(err, &verr) {
		writeDetail(w, http.StatusUnprocessableEntity, verr.Error())
		return
	}

	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("path", r.URL.Path),
		slog.String("request_id", RequestIDFromContext(r.Context())),
		slog.String("error", err.Error()),
	)
	writeDetail(w, http.StatusInternalServerError, err.Error())
}
