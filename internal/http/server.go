// Package http serves the household finance web UI and its JSON endpoints.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"homefin/internal/cache"
	applog "homefin/internal/log"
	"homefin/internal/middleware/ratelimit"
	"homefin/internal/middleware/security"
	"homefin/internal/middleware/trace"
	"homefin/internal/ports"
	"homefin/internal/services"
	appweb "homefin/web"
)

const (
	maxFormBytes     = 64 << 10
	staticMaxAge     = 86400
	cacheCleanupTick = 5 * time.Minute
)

type Server struct {
	http.Server
	templates *template.Template
	store     ports.Store
	reports   *services.ReportService
	logger    *applog.Logger
	events    *applog.StructuredLogger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	trace    *trace.Middleware
	caches   *cache.Manager

	started time.Time
}

// Options tunes the server. Zero values take defaults.
type Options struct {
	RateLimitPerMinute int
	Logger             *applog.Logger
}

// NewServer wires the router. Writes go through store, so a store that
// publishes changes keeps the mirror and report caches current.
func NewServer(addr string, store ports.Store, reports *services.ReportService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.FromContext(context.Background()).WithComponent(applog.ComponentHTTP)
	}

	tmpl, err := parseTemplates()
	if err != nil {
		logger.Error("Template parsing failed",
			applog.FieldComponent, applog.ComponentTemplate,
			"error_type", applog.ErrorTypeConfiguration,
			"error", err)
	}

	s := &Server{
		templates: tmpl,
		store:     store,
		reports:   reports,
		logger:    logger,
		events:    applog.NewStructuredLogger(logger),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		detector: security.NewDetector(),
		caches:   cache.NewManager(),
		started:  time.Now(),
	}
	s.trace = trace.NewMiddleware(s.detector.ExtractClientIP, logger)

	for _, c := range reports.Caches() {
		s.caches.Register(c)
	}
	s.caches.StartCleanup(cacheCleanupTick)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.detector.Middleware)
	r.Use(s.trace.Middleware)
	r.Use(applog.Middleware(s.logger))
	r.Use(applog.RequestIDMiddleware(trace.RequestID))
	r.Use(applog.ComponentMiddleware(applog.ComponentHTTP))
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(middleware.Compress(5))
	r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited))

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err == nil {
		r.With(security.StaticAssetMiddleware(staticMaxAge)).
			Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	}

	r.Get("/", s.handleDashboard)

	s.mountMonthly(r, s.balanceKind(), s.handleBalances)
	s.mountMonthly(r, s.incomeKind(), s.handleIncome)

	r.Route("/taxes", func(r chi.Router) {
		r.Get("/", s.handleTaxes)
		r.Get("/new", s.handleTaxNew)
		r.Post("/", s.handleTaxCreate)
		r.Get("/{year}", s.handleTaxEdit)
		r.Post("/{year}", s.handleTaxUpdate)
		r.Post("/{year}/delete", s.handleTaxDelete)
	})

	r.Route("/constants", func(r chi.Router) {
		r.Get("/", s.handleConstants)
		r.Post("/", s.handleConstantCreate)
		r.Post("/{id}/delete", s.handleConstantDelete)
	})

	r.Get("/reports", s.handleReports)
	r.Get("/analysis", s.handleAnalysis)

	r.Route("/api", func(r chi.Router) {
		r.Get("/series", s.handleAPISeries)
		r.Get("/reports/quarter", s.handleAPIQuarter)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusNotFound, "Page not found")
	})
	return r
}

func (s *Server) mountMonthly(r chi.Router, k monthlyKind, list http.HandlerFunc) {
	r.Route(k.base, func(r chi.Router) {
		r.Get("/", list)
		r.Get("/new", s.monthlyNew(k))
		r.Post("/", s.monthlyCreate(k))
		r.Get("/{year}/{month}", s.monthlyEdit(k))
		r.Post("/{year}/{month}", s.monthlyUpdate(k))
		r.Post("/{year}/{month}/delete", s.monthlyDelete(k))
	})
}

func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}
	const msg = "Too many changes in a short time. Try again in a minute."
	ErrorResponse(http.StatusTooManyRequests, msg).
		TriggerNotification(NotificationError, msg, 5000).
		WriteFor(w, r)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}

// Shutdown stops background cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	s.caches.Stop()
	return s.Server.Shutdown(ctx)
}
