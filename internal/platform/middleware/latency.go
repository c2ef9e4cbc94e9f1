package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"drivewise/internal/platform/metrics"
)

// Latency records request durations against the route pattern so path
// parameters do not explode the label space.
func Latency(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					path = p
				}
			}
			m.ObserveRequest(r.Method, path, time.Since(start))
		})
	}
}
