// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/podium/internal/adapters/sandbox"
	"github.com/okian/podium/internal/adapters/storage"
	"github.com/okian/podium/internal/domain/metric"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/policy"
	"github.com/okian/podium/internal/domain/tabular"
	"github.com/okian/podium/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Submit scores one submission file synchronously.
	Submit(ctx context.Context, taskID, userID, userName string, fileBytes []byte) (types.Receipt, error)

	// Leaderboard returns the ranked standing for a task.
	Leaderboard(ctx context.Context, taskID string) ([]types.Entry, error)

	// Task returns task metadata for display.
	Task(ctx context.Context, taskID string) (model.Task, error)
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	submissionsHandler *SubmissionsHandler
	leaderboardHandler *LeaderboardHandler
	tasksHandler       *TasksHandler
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxUploadBytes int64) *Server {
	return &Server{
		submissionsHandler: NewSubmissionsHandler(deps, maxUploadBytes),
		leaderboardHandler: NewLeaderboardHandler(deps),
		tasksHandler:       NewTasksHandler(deps),
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /tasks/{id}", MetricsMiddleware(s.tasksHandler.HandleGetTask, "task"))
	mux.HandleFunc("POST /tasks/{id}/submissions", MetricsMiddleware(s.submissionsHandler.HandlePostSubmission, "submissions"))
	mux.HandleFunc("GET /tasks/{id}/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError maps the scoring error taxonomy onto HTTP statuses. All
// kinds except storage and sandbox-infrastructure faults are expected,
// client-visible validation outcomes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "task_not_found", err)
	case errors.Is(err, policy.ErrNotStarted):
		writeError(w, http.StatusForbidden, "not_started", err)
	case errors.Is(err, policy.ErrEnded):
		writeError(w, http.StatusForbidden, "ended", err)
	case errors.Is(err, policy.ErrAnswerUnavailable):
		writeError(w, http.StatusConflict, "answer_unavailable", err)
	case errors.Is(err, policy.ErrScoringNotConfigured):
		writeError(w, http.StatusConflict, "scoring_not_configured", err)
	case errors.Is(err, policy.ErrQuotaExceeded):
		writeError(w, http.StatusTooManyRequests, "quota_exceeded", err)
	case errors.Is(err, tabular.ErrFormat):
		writeError(w, http.StatusUnprocessableEntity, "format", err)
	case errors.Is(err, metric.ErrDimensionMismatch):
		writeError(w, http.StatusUnprocessableEntity, "dimension_mismatch", err)
	case errors.Is(err, metric.ErrInvalidNumeric):
		writeError(w, http.StatusUnprocessableEntity, "invalid_numeric", err)
	case errors.Is(err, sandbox.ErrInvalidScore), errors.Is(err, metric.ErrInvalidScore):
		writeError(w, http.StatusUnprocessableEntity, "invalid_score", err)
	case errors.Is(err, storage.ErrStorage), errors.Is(err, sandbox.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "storage_error", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
