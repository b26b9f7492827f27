// Package httptransport assembles the HTTP surface: the shared middleware
// chain, operational endpoints, and every feature handler's routes.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Rolando1980/client-geo-logger/internal/platform/metrics"
	"github.com/Rolando1980/client-geo-logger/internal/platform/middleware"
	"github.com/Rolando1980/client-geo-logger/internal/transport/http/shared"
)

// Registrar is anything that can mount its routes on the router. Every
// feature handler implements it.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports the readiness of one backing dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// NewRouter builds the application router. Handlers mount their own auth
// middleware; the chain here applies to every route.
func NewRouter(log *slog.Logger, m *metrics.Metrics, checks map[string]HealthChecker, handlers ...Registrar) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Trace)
	r.Use(middleware.Metadata)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Latency(m))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", handleHealth(checks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}

// handleHealth pings each backing dependency with a short deadline. An empty
// checker map (in-memory mode) always reports healthy.
func handleHealth(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		deps := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check.Health(ctx); err != nil {
				deps[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			deps[name] = "ok"
		}
		shared.WriteJSON(w, status, map[string]any{
			"status":       statusWord(status),
			"dependencies": deps,
		})
	}
}

func statusWord(status int) string {
	if status == http.StatusOK {
		return "ok"
	}
	return "degraded"
}
