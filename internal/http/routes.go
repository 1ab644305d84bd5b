package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/strixlab/patrol/internal/core"
	"github.com/strixlab/patrol/internal/observability/statsd"
)

// RouterServices holds the collaborators needed by the HTTP control API.
type RouterServices struct {
	Control core.SchedulerControl
	Tasks   core.TaskStore

	// Checks are pinged by GET /health?detail=true.
	Checks []DependencyChecker

	Version string
	Logger  *slog.Logger
	Metrics statsd.Sink

	// MaxBodyBytes caps request bodies; zero means the default cap.
	MaxBodyBytes int64
}

// NewRouter creates and configures the control API router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	healthHandlers := &HealthHandlers{
		Version: services.Version,
		Checks:  services.Checks,
		Logger:  logger,
	}
	schedulerHandlers := &SchedulerHandlers{Ctrl: services.Control, Logger: logger}
	queueHandlers := &QueueHandlers{Ctrl: services.Control, Logger: logger}
	taskHandlers := &TaskHandlers{Tasks: services.Tasks, Logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", rootHandler)
	mux.HandleFunc("GET /health", healthHandlers.Health)

	mux.HandleFunc("GET /schedulers", schedulerHandlers.List)
	mux.HandleFunc("GET /schedulers/{id}", schedulerHandlers.Get)
	mux.HandleFunc("PATCH /schedulers/{id}", schedulerHandlers.Patch)

	mux.HandleFunc("GET /queues", queueHandlers.List)
	mux.HandleFunc("GET /queues/{id}", queueHandlers.Get)
	mux.HandleFunc("GET /queues/{id}/pop", queueHandlers.Pop)
	mux.HandleFunc("POST /queues/{id}/push", queueHandlers.Push)

	mux.HandleFunc("GET /tasks", taskHandlers.List)
	mux.HandleFunc("GET /tasks/{id}", taskHandlers.Get)

	var handler http.Handler = &notFoundHandler{mux: mux}
	handler = MaxBytes(services.MaxBodyBytes)(handler)
	handler = RequestTiming(services.Metrics)(handler)
	handler = Logging(logger)(handler)
	return Recover(logger)(handler)
}

// notFoundHandler wraps a ServeMux so unmatched paths get the JSON error
// envelope instead of the mux's plain-text 404.
type notFoundHandler struct {
	mux *http.ServeMux
}

func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, pattern := h.mux.Handler(r); pattern == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "not_found",
			Err:     errors.New("no such endpoint"),
		})
		return
	}
	h.mux.ServeHTTP(w, r)
}
