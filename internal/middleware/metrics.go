package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/unw4/TrustChain/internal/metrics"
)

// statusRecorder captures the response status for instrumentation.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Metrics instruments requests with Prometheus counters and latency
// histograms. The websocket endpoint is skipped: hijacked connections
// are long-lived and would skew the duration buckets.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}

		metrics.HTTPInFlight(1)
		defer metrics.HTTPInFlight(-1)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		metrics.HTTPRequest(r.Method, r.URL.Path, strconv.Itoa(rec.status))
		metrics.HTTPDuration(r.Method, r.URL.Path, time.Since(start).Seconds())
	})
}
