package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/strixlab/patrol/internal/domain/model"
)

// serviceName identifies this service in health payloads.
const serviceName = "scheduler"

// healthCheckTimeout bounds the dependency pings behind ?detail=true so a
// hung upstream cannot stall the probe.
const healthCheckTimeout = 5 * time.Second

// DependencyChecker is the health surface of one upstream connector.
type DependencyChecker interface {
	Name() string
	Health(ctx context.Context) error
}

// HealthHandlers serves the liveness and readiness endpoints.
type HealthHandlers struct {
	Version string
	Checks  []DependencyChecker
	Logger  *slog.Logger
}

// rootHandler returns an empty JSON object. Load balancers and runner
// clients probe / to tell the service apart from a dead port.
func rootHandler(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{})
}

// Health reports the service as healthy. With ?detail=true it also pings
// every registered dependency and nests the outcomes under results; a failing
// dependency is reported there without flipping the service's own flag, the
// scheduler keeps running through upstream outages.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	health := model.ServiceHealth{
		Service: serviceName,
		Healthy: true,
		Version: h.Version,
	}

	if r.URL.Query().Get("detail") == "true" {
		health.Results = h.checkDependencies(r.Context())
	}

	WriteJSON(w, http.StatusOK, health)
}

func (h *HealthHandlers) checkDependencies(ctx context.Context) []model.ServiceHealth {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	results := make([]model.ServiceHealth, 0, len(h.Checks))
	for _, check := range h.Checks {
		result := model.ServiceHealth{Service: check.Name(), Healthy: true}
		if err := check.Health(ctx); err != nil {
			result.Healthy = false
			if h.Logger != nil {
				h.Logger.Warn("dependency unhealthy", "dependency", check.Name(), "error", err)
			}
		}
		results = append(results, result)
	}
	return results
}
