package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/strixlab/patrol/internal/core"
	"github.com/strixlab/patrol/internal/domain/model"
)

// SchedulerHandlers provides HTTP handlers for scheduler inspection and the
// populate toggle.
type SchedulerHandlers struct {
	Ctrl   core.SchedulerControl
	Logger *slog.Logger
}

// List returns a snapshot of every running scheduler, sorted by ID.
func (h *SchedulerHandlers) List(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Ctrl.ListSchedulers(r.Context()))
}

// Get returns one scheduler's snapshot by ID.
func (h *SchedulerHandlers) Get(w http.ResponseWriter, r *http.Request) {
	status, err := h.Ctrl.GetScheduler(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, status)
}

// Patch updates the mutable fields of a scheduler. Only the populate toggle
// is mutable; unknown fields are rejected by the decoder.
func (h *SchedulerHandlers) Patch(w http.ResponseWriter, r *http.Request) {
	var patch model.SchedulerPatch
	if !DecodeJSON(w, r, &patch) {
		return
	}
	if patch.PopulateEnabled == nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "validation",
			Err:     errors.New("populate_queue_enabled is required"),
		})
		return
	}

	status, err := h.Ctrl.SetPopulateEnabled(r.Context(), r.PathValue("id"), *patch.PopulateEnabled)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, status)
}
