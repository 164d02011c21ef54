package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/fleetops/internal/metrics"
)

// NewRequestMetrics returns a middleware that observes request latency on m,
// labelled by the matched chi route pattern. Mount it with Use on the root
// router: the pattern is only complete after routing has finished.
func NewRequestMetrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.Request(r.Method, routePattern(r), status, time.Since(start))
		})
	}
}
