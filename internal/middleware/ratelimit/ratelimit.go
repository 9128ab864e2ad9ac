// Package ratelimit limits write requests per client IP over a fixed
// one-minute window.
package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

const (
	window    = time.Minute
	staleIdle = 10 * time.Minute
)

// Config sets the per-client budget. Zero fields take DefaultConfig values.
type Config struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
}

func DefaultConfig() Config {
	return Config{RequestsPerMinute: 60, CleanupInterval: 5 * time.Minute}
}

// Limiter counts requests per client in fixed windows. A background
// goroutine forgets idle clients until Stop.
type Limiter struct {
	requestsPerMinute int
	cleanupInterval   time.Duration
	now               func() time.Time

	mu      sync.Mutex
	clients map[string]*bucket

	denied atomic.Int64
	stop   chan struct{}
	once   sync.Once
}

type bucket struct {
	opened time.Time
	seen   time.Time
	count  int
}

func NewLimiter(config Config) *Limiter {
	def := DefaultConfig()
	rl := &Limiter{
		requestsPerMinute: config.RequestsPerMinute,
		cleanupInterval:   config.CleanupInterval,
		now:               time.Now,
		clients:           make(map[string]*bucket),
		stop:              make(chan struct{}),
	}
	if rl.requestsPerMinute <= 0 {
		rl.requestsPerMinute = def.RequestsPerMinute
	}
	if rl.cleanupInterval <= 0 {
		rl.cleanupInterval = def.CleanupInterval
	}
	go rl.sweep()
	return rl
}

// Allow counts one request for clientIP and reports whether it fits the
// current window.
func (rl *Limiter) Allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b := rl.clients[clientIP]
	if b == nil || now.Sub(b.opened) >= window {
		b = &bucket{opened: now}
		rl.clients[clientIP] = b
	}
	b.seen = now
	b.count++
	if b.count > rl.requestsPerMinute {
		rl.denied.Add(1)
		return false
	}
	return true
}

// RetryAfter is the number of whole seconds until clientIP's window resets.
func (rl *Limiter) RetryAfter(clientIP string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b := rl.clients[clientIP]
	if b == nil {
		return 0
	}
	left := b.opened.Add(window).Sub(rl.now())
	if left <= 0 {
		return 0
	}
	return int(left.Round(time.Second) / time.Second)
}

func (rl *Limiter) sweep() {
	t := time.NewTicker(rl.cleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-t.C:
			rl.cleanupStaleEntries()
		}
	}
}

func (rl *Limiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-staleIdle)
	for ip, b := range rl.clients {
		if b.seen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *Limiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (rl *Limiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// Metrics feeds the /metrics endpoint.
type Metrics struct {
	TotalHits   int64
	ClientCount int64
}

func (rl *Limiter) GetMetrics() Metrics {
	return Metrics{TotalHits: rl.denied.Load(), ClientCount: int64(rl.ActiveClients())}
}

func safeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead || m == http.MethodOptions
}

// Middleware limits unsafe methods only; reads always pass. onLimit writes
// the 429 body, falling back to plain text when nil.
func (rl *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	if onLimit == nil {
		onLimit = func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if safeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			ip := extractIP(r)
			if rl.Allow(ip) {
				next.ServeHTTP(w, r)
				return
			}
			slog.WarnContext(r.Context(), "Write rate limited",
				"client_ip", ip, "method", r.Method, "path", r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter(ip)))
			onLimit(w, r)
		})
	}
}
