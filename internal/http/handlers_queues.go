package httpx

import (
	"log/slog"
	"net/http"

	"github.com/strixlab/patrol/internal/core"
	"github.com/strixlab/patrol/internal/domain/model"
)

// QueueHandlers provides HTTP handlers for queue inspection and the manual
// pop/push escape hatches.
type QueueHandlers struct {
	Ctrl   core.SchedulerControl
	Logger *slog.Logger
}

// List returns a snapshot of every priority queue, sorted by ID.
func (h *QueueHandlers) List(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Ctrl.ListQueues(r.Context()))
}

// Get returns one queue's snapshot by ID.
func (h *QueueHandlers) Get(w http.ResponseWriter, r *http.Request) {
	status, err := h.Ctrl.GetQueue(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, status)
}

// Pop removes and returns the highest-priority item from a queue. The popped
// task is marked dispatched in the audit store. An empty queue is a 400, not
// an empty body: runners poll this endpoint and need the distinction.
func (h *QueueHandlers) Pop(w http.ResponseWriter, r *http.Request) {
	item, err := h.Ctrl.PopQueue(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, item)
}

// Push inserts an item onto a queue, subject to the queue's capacity and
// update policy. Operators use this to inject tasks; priority 0 jumps the
// line ahead of anything the schedulers ranked.
func (h *QueueHandlers) Push(w http.ResponseWriter, r *http.Request) {
	var item model.PrioritizedItem
	if !DecodeJSON(w, r, &item) {
		return
	}

	if err := h.Ctrl.PushQueue(r.Context(), r.PathValue("id"), &item); err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
