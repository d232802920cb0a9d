package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/fraudboard/pkg/metrics"
	"golang.org/x/time/rate"
)

// errorClass labels a failed response in the error metrics.
type errorClass struct {
	kind     string
	severity string
}

// classify maps a status code to its error class. ok is false below 400.
func classify(status int) (errorClass, bool) {
	switch {
	case status < http.StatusBadRequest:
		return errorClass{}, false
	case status == http.StatusTooManyRequests:
		return errorClass{kind: "rate_limit", severity: "low"}, true
	case status == http.StatusMethodNotAllowed:
		return errorClass{kind: "method_not_allowed", severity: "low"}, true
	case status == http.StatusNotFound:
		return errorClass{kind: "not_found", severity: "low"}, true
	case status < http.StatusInternalServerError:
		return errorClass{kind: "client_error", severity: "medium"}, true
	default:
		return errorClass{kind: "server_error", severity: "high"}, true
	}
}

// MetricsMiddleware records request count and duration for endpoint, plus
// the error metrics for any 4xx or 5xx response.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next(sw, r)

		ms := float64(time.Since(start).Microseconds()) / 1e3
		code := strconv.Itoa(sw.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, code)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, ms)

		if class, failed := classify(sw.status); failed {
			metrics.RecordErrorByEndpoint(endpoint, r.Method, class.kind)
			metrics.RecordErrorByType(class.kind, class.severity)
			metrics.RecordErrorLatency("http", class.kind, ms)
		}
	}
}

// RateLimitMiddleware rejects requests beyond rps (token bucket of size
// burst) with 429. A burst below 1 is raised to 1.
func RateLimitMiddleware(next http.HandlerFunc, endpoint string, rps float64, burst int) http.HandlerFunc {
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			metrics.RecordRateLimited(endpoint)
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate_limited", NewKind("api."+endpoint, ErrRateLimited))
			return
		}
		next(w, r)
	}
}

// statusWriter remembers the status code written through it.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Flush lets streaming handlers flush through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
