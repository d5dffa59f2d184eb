package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Sittravell/MalTrackarr/internal/models"
	"github.com/Sittravell/MalTrackarr/internal/shared"
	"github.com/Sittravell/MalTrackarr/internal/tasks"
	"github.com/charmbracelet/log"
)

// errorBody is the JSON error response, naming the stage that failed.
type errorBody struct {
	Error string `json:"error"`
	Stage string `json:"stage"`
}

// AnimeListHandler serves GET /animelist, the merged watch-list endpoint.
// Implements the Handler interface for registration with a Router.
type AnimeListHandler struct {
	engine *tasks.EnrichEngine
	logger *log.Logger
}

// NewAnimeListHandler creates the handler over the given enrichment engine.
func NewAnimeListHandler(engine *tasks.EnrichEngine, logger *log.Logger) *AnimeListHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &AnimeListHandler{engine: engine, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *AnimeListHandler) Routes() []string {
	return []string{"/animelist"}
}

// ServeHTTP validates the query parameters, runs the enrichment pipeline
// and writes the merged records as a JSON array.
//
// Parameter validation fails before any upstream call is made.
func (h *AnimeListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "request")
		return
	}

	username := r.URL.Query().Get("username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "username query param is required", "request")
		return
	}

	status := r.URL.Query().Get("status")
	if status == "" {
		status = models.DefaultStatus
	}
	if !models.ValidStatus(status) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unrecognized status %q", status), "request")
		return
	}

	records, err := h.engine.Run(r.Context(), username, status)
	if err != nil {
		h.logger.Error("pipeline failed", "username", username, "status", status, "error", err)
		code, stage := classify(err)
		writeError(w, code, err.Error(), stage)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(records); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// classify maps pipeline errors onto HTTP statuses and failure stages.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, shared.ErrAuthFailed),
		errors.Is(err, shared.ErrRefreshFailed),
		errors.Is(err, shared.ErrMissingCredentials):
		return http.StatusUnauthorized, "auth"
	case errors.Is(err, shared.ErrProviderRequest):
		return http.StatusBadGateway, "provider"
	case errors.Is(err, shared.ErrDatasetRequest):
		return http.StatusBadGateway, "dataset"
	case errors.Is(err, shared.ErrMissingConfig),
		errors.Is(err, shared.ErrInvalidConfig),
		errors.Is(err, shared.ErrConfigWrite):
		return http.StatusInternalServerError, "config"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeError(w http.ResponseWriter, code int, message, stage string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(errorBody{Error: message, Stage: stage})
}

// HealthHandler reports process liveness.
//
// It carries no routes of its own; register it with [BasicRouter.Handle] so
// the method filter rejects anything but GET.
type HealthHandler struct{}

func (HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
