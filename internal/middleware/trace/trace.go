// Package trace tags each request with an ID, logs it and keeps request
// counters for /metrics.
package trace

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	applog "homefin/internal/log"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// Metrics is a snapshot of request counters.
type Metrics struct {
	TotalRequests int64
	ServerErrors  int64
	// AverageResponseTime is the mean over all requests, in microseconds.
	AverageResponseTime int64
}

type Middleware struct {
	extractIP func(*http.Request) string
	events    *applog.StructuredLogger

	requests   atomic.Int64
	serverErrs atomic.Int64
	micros     atomic.Int64
}

// NewMiddleware builds the tracer. extractIP may be nil; a nil logger uses
// the process default.
func NewMiddleware(extractIP func(*http.Request) string, logger *applog.Logger) *Middleware {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	if extractIP == nil {
		extractIP = func(*http.Request) string { return "" }
	}
	return &Middleware{extractIP: extractIP, events: applog.NewStructuredLogger(logger)}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ip := m.extractIP(r)
		id := RequestIDFromHeader(r)

		w.Header().Set(RequestIDHeader, id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))
		m.events.LogHTTPStart(r.Context(), r, ip)

		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)

		elapsed := time.Since(start)
		m.requests.Add(1)
		m.micros.Add(elapsed.Microseconds())
		if sw.status() >= http.StatusInternalServerError {
			m.serverErrs.Add(1)
		}
		m.events.LogHTTPEnd(r.Context(), r, sw.status(), elapsed.Milliseconds(), ip)
	})
}

func (m *Middleware) GetMetrics() Metrics {
	n := m.requests.Load()
	out := Metrics{TotalRequests: n, ServerErrors: m.serverErrs.Load()}
	if n > 0 {
		out.AverageResponseTime = m.micros.Load() / n
	}
	return out
}

// statusWriter records the first status written.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.code == 0 {
		w.code = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.code == 0 {
		w.code = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) status() int {
	if w.code == 0 {
		return http.StatusOK
	}
	return w.code
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// RequestIDFromHeader keeps an incoming X-Request-ID when it is a UUID and
// mints a new one otherwise.
func RequestIDFromHeader(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	return uuid.NewString()
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestID is GetRequestID for request-scoped log middleware.
func RequestID(r *http.Request) string {
	return GetRequestID(r.Context())
}
