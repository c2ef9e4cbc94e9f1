// Package httpapi assembles the HTTP surface: domain handler packages plus
// the health and metrics endpoints.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"drivewise/pkg/platform/httputil"
)

// Registrar is implemented by every domain handler package.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// NewRouter wires all endpoints. Health checks run on demand so /healthz
// reflects current dependency state.
func NewRouter(checks map[string]HealthCheck, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(req.Context()); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = err.Error()
			}
		}
		httputil.WriteJSON(w, status, body)
	})
	r.Handle("/metrics", promhttp.Handler())

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}
