package middleware

import (
	"net/http"
	"time"

	"github.com/Temutjin2k/sitetrack/pkg/metrics"
)

// Metrics records HTTP metrics labelled by the matched route pattern. It must
// wrap the mux directly so the pattern set during routing is visible here.
func (m *Middleware) Metrics(serviceName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			metrics.HttpRequestsInFlight.WithLabelValues(serviceName).Inc()
			defer metrics.HttpRequestsInFlight.WithLabelValues(serviceName).Dec()

			rw := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rw, r)

			path := r.Pattern
			if path == "" {
				path = "unmatched"
			}
			metrics.RecordHTTPMetrics(serviceName, r.Method, path, rw.Status(), time.Since(start))
		})
	}
}
