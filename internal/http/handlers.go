package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"homefin/internal/core"
	applog "homefin/internal/log"
	"homefin/internal/ports"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"time":           time.Now().UTC().Format(time.RFC3339),
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	ready := true

	if s.templates == nil {
		checks["templates"] = "not loaded"
		ready = false
	} else {
		checks["templates"] = "ok"
	}

	if p, ok := s.store.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed",
				applog.FieldComponent, applog.ComponentStorage,
				"error", err)
			checks["store"] = "unavailable"
			ready = false
		} else {
			checks["store"] = "ok"
		}
	} else {
		checks["store"] = "ok"
	}

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "not ready", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

type metric struct {
	name, help, kind string
	value            float64
}

// handleMetrics writes the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	reqs := s.trace.GetMetrics()
	limits := s.limiter.GetMetrics()
	sec := s.detector.GetMetrics()

	metrics := []metric{
		{"http_requests_total", "Total HTTP requests", "counter", float64(reqs.TotalRequests)},
		{"http_server_errors_total", "Responses with a 5xx status", "counter", float64(reqs.ServerErrors)},
		{"http_response_time_avg_microseconds", "Mean response time", "gauge", float64(reqs.AverageResponseTime)},
		{"rate_limit_hits_total", "Writes rejected by the rate limiter", "counter", float64(limits.TotalHits)},
		{"active_rate_limit_clients", "Clients tracked by the rate limiter", "gauge", float64(limits.ClientCount)},
		{"suspicious_requests_total", "Requests flagged by the detector", "counter", float64(sec.SuspiciousRequests)},
		{"blocked_requests_total", "Requests rejected by method", "counter", float64(sec.BlockedRequests)},
		{"uptime_seconds", "Seconds since the server started", "gauge", time.Since(s.started).Seconds()},
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	for _, m := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %g\n", m.name, m.help, m.name, m.kind, m.name, m.value)
	}
}

// render executes a page template into a buffer first so a failing template
// never leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name, title, active string, data interface{}) {
	if s.templates == nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path,
			applog.FieldComponent, applog.ComponentTemplate,
			"error_type", applog.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, page{Title: title, Active: active, Data: data}); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			"error", err,
			"template", name)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorView struct {
	Status  int
	Message string
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	switch {
	case wantsJSON(r):
		writeJSONError(w, status, message)
	case isHTMX(r) || s.templates == nil:
		ErrorResponse(status, message).Write(w)
	default:
		s.render(w, r, status, "error.html", http.StatusText(status), "", errorView{Status: status, Message: message})
	}
}

// fail logs err and answers with the status it maps to.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusForError(err)
	logger := applog.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed",
			applog.FieldOperation, op,
			"error_type", applog.ErrorTypeInternal,
			"error", err)
		s.renderError(w, r, status, "Something went wrong. Please try again.")
		return
	}
	logger.WarnContext(r.Context(), "Request rejected",
		applog.FieldOperation, op,
		applog.FieldStatusCode, status,
		"error", err)
	s.renderError(w, r, status, userMessage(err))
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidPeriod),
		errors.Is(err, core.ErrInvalidYear),
		errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrInvalidDay),
		errors.Is(err, core.ErrUnknownField):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return "Record not found"
	case errors.Is(err, core.ErrUnknownField):
		return "The form contains an unknown field"
	case errors.Is(err, core.ErrInvalidPeriod), errors.Is(err, core.ErrInvalidMonth):
		return "Invalid month or year"
	case errors.Is(err, core.ErrInvalidYear):
		return "Invalid year"
	default:
		return "Invalid input"
	}
}
