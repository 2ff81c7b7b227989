package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gourl/msid/internal/metrics"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Metrics returns a middleware that records Prometheus request metrics.
func Metrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			metrics.RecordRequest(r.Method, normalizePath(r.URL.Path), rw.statusCode, time.Since(start))
		})
	}
}

// normalizePath maps request paths to route templates so identifiers and
// profile names don't become metric labels.
func normalizePath(path string) string {
	switch path {
	case "/health", "/ready", "/metrics", "/api/v1/ids", "/api/v1/profiles":
		return path
	}

	if rest, ok := strings.CutPrefix(path, "/api/v1/ids/"); ok && isSingleSegment(rest) {
		return "/api/v1/ids/{id}"
	}
	if rest, ok := strings.CutPrefix(path, "/api/v1/profiles/"); ok && isSingleSegment(rest) {
		return "/api/v1/profiles/{name}"
	}
	return "/other"
}

func isSingleSegment(s string) bool {
	return s != "" && !strings.Contains(s, "/")
}
