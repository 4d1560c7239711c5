// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"time"

	"github.com/okian/podium/internal/domain/metric"
)

// taskResponse is the public read shape of a task. The answer file path and
// scoring code never leave the service.
type taskResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	MaxPerDay      int       `json:"max_per_day"`
	Metric         string    `json:"metric"`
	HigherIsBetter bool      `json:"higher_is_better"`
}

// TasksHandler handles task metadata reads.
type TasksHandler struct {
	deps Dependencies
}

// NewTasksHandler creates a new tasks handler.
func NewTasksHandler(deps Dependencies) *TasksHandler {
	return &TasksHandler{deps: deps}
}

// HandleGetTask handles GET /tasks/{id} requests.
func (h *TasksHandler) HandleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.deps.Task(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskResponse{
		ID:             task.ID,
		Title:          task.Title,
		StartsAt:       task.StartsAt,
		EndsAt:         task.EndsAt,
		MaxPerDay:      task.MaxPerDay,
		Metric:         string(task.Metric),
		HigherIsBetter: metric.Direction(task),
	})
}
