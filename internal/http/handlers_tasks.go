package httpx

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/strixlab/patrol/internal/core"
	"github.com/strixlab/patrol/internal/domain/model"
	apperrors "github.com/strixlab/patrol/internal/errors"
)

const (
	defaultTaskPageSize = 50
	maxTaskPageSize     = 500
)

// TaskHandlers provides HTTP handlers for the task audit log.
type TaskHandlers struct {
	Tasks  core.TaskStore
	Logger *slog.Logger
}

// taskPage is the paginated response of the task list endpoint.
type taskPage struct {
	Tasks  []*model.Task `json:"tasks"`
	Total  int           `json:"total"`
	Offset int           `json:"offset"`
	Limit  int           `json:"limit"`
}

// List returns one page of tasks, newest first, optionally narrowed by
// scheduler_id and status query parameters.
func (h *TaskHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	filter := core.TaskFilter{Offset: offset, Limit: limit}
	if schedulerID := r.URL.Query().Get("scheduler_id"); schedulerID != "" {
		filter.SchedulerID = &schedulerID
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := model.TaskStatus(raw)
		if !status.Valid() {
			writeServiceError(w, h.Logger, apperrors.Validationf("unknown task status %q", raw))
			return
		}
		filter.Status = &status
	}

	tasks, total, err := h.Tasks.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	if tasks == nil {
		tasks = []*model.Task{}
	}

	WriteJSON(w, http.StatusOK, taskPage{
		Tasks:  tasks,
		Total:  total,
		Offset: offset,
		Limit:  limit,
	})
}

// Get returns one task by ID.
func (h *TaskHandlers) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.Tasks.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	if task == nil {
		writeServiceError(w, h.Logger, apperrors.NotFoundf("no task %s", r.PathValue("id")))
		return
	}
	WriteJSON(w, http.StatusOK, task)
}

// pageParams reads limit/offset query params, tolerating missing or garbage
// values, and clamps the limit to the page size cap.
func pageParams(r *http.Request) (limit, offset int) {
	limit = defaultTaskPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxTaskPageSize {
		limit = maxTaskPageSize
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			offset = v
		}
	}
	return limit, offset
}
