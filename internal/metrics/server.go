package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"SignalSentinel/internal/logger"
)

// Pinger is any dependency the health check can ping (sqlx.DB, redis client wrapper).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health tracks liveness of the poll cycle and its dependencies.
type Health struct {
	mu        sync.RWMutex
	startedAt time.Time
	lastCycle time.Time
	maxAge    time.Duration
	deps      map[string]Pinger
	now       func() time.Time
}

// NewHealth returns a health tracker that reports degraded when no cycle
// completed within maxAge.
func NewHealth(maxAge time.Duration) *Health {
	return &Health{startedAt: time.Now(), maxAge: maxAge, deps: map[string]Pinger{}, now: time.Now}
}

// AddDependency registers a named dependency pinged on every /healthz call.
func (h *Health) AddDependency(name string, p Pinger) {
	h.mu.Lock()
	h.deps[name] = p
	h.mu.Unlock()
}

// MarkCycle records a completed signal check.
func (h *Health) MarkCycle(t time.Time) {
	h.mu.Lock()
	h.lastCycle = t
	h.mu.Unlock()
}

type healthReport struct {
	Status    string            `json:"status"`
	Uptime    string            `json:"uptime"`
	LastCycle string            `json:"last_cycle,omitempty"`
	Deps      map[string]string `json:"deps,omitempty"`
}

// ServeHTTP handles the /healthz endpoint.
func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	lastCycle, deps := h.lastCycle, make(map[string]Pinger, len(h.deps))
	for k, v := range h.deps {
		deps[k] = v
	}
	h.mu.RUnlock()

	now := h.now()
	report := healthReport{Status: "healthy", Uptime: now.Sub(h.startedAt).Round(time.Second).String()}
	code := http.StatusOK

	if !lastCycle.IsZero() {
		report.LastCycle = lastCycle.Format(time.RFC3339)
	}
	if h.maxAge > 0 && !lastCycle.IsZero() && now.Sub(lastCycle) > h.maxAge {
		report.Status = "degraded"
		code = http.StatusServiceUnavailable
	}

	if len(deps) > 0 {
		report.Deps = make(map[string]string, len(deps))
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		for name, p := range deps {
			if err := p.PingContext(ctx); err != nil {
				report.Deps[name] = err.Error()
				report.Status = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			report.Deps[name] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(report)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
	log  logger.Logger
}

// NewServer creates a metrics and health server.
func NewServer(addr string, m *Metrics, health *Health, log logger.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	mux.Handle("/healthz", health)

	return &Server{
		addr: addr,
		log:  log,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler exposes the mux, mainly for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		s.log.Info("metrics_server_listening", zap.String("addr", s.addr))
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			s.log.Error("metrics_server_error", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
