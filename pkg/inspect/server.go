package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	kerrors "github.com/kirei-dev/kirei/internal/errors"
	"github.com/kirei-dev/kirei/pkg/fx"
)

// Config configures the inspector.
type Config struct {
	// Addr is the listen address (default: "localhost:7070").
	Addr string

	// Queue is the queue whose flushes are streamed (default:
	// fx.DefaultQueue()).
	Queue *fx.Queue

	// Gatherer serves /metrics (default: prometheus.DefaultGatherer).
	Gatherer prometheus.Gatherer

	// Logger receives request and lifecycle logs (default: slog.Default()).
	Logger *slog.Logger

	// ReadHeaderTimeout bounds header reads (default: 5s).
	ReadHeaderTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown (default: 5s).
	ShutdownTimeout time.Duration
}

// DefaultAddr is the listen address used when Config.Addr is empty.
const DefaultAddr = "localhost:7070"

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Queue == nil {
		c.Queue = fx.DefaultQueue()
	}
	if c.Gatherer == nil {
		c.Gatherer = prometheus.DefaultGatherer
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.ReadHeaderTimeout <= 0 {
		c.ReadHeaderTimeout = 5 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
}

// Server is the inspector HTTP server.
type Server struct {
	config    Config
	router    chi.Router
	hub       *Hub
	unobserve func()

	mu         sync.Mutex
	httpServer *http.Server
	addr       string
}

// New creates an inspector and subscribes it to the configured queue.
// Call Close (or let Run return) to unsubscribe.
func New(config Config) *Server {
	config.applyDefaults()

	s := &Server{
		config: config,
		hub:    NewHub(),
	}
	s.router = s.routes()
	s.unobserve = config.Queue.Observe(func(ev fx.FlushEvent) {
		s.hub.Broadcast(Message{Type: MessageFlush, Flush: &ev})
	})
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Get("/events", s.hub.HandleWebSocket)
	})
	return r
}

// Handler returns the inspector's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the event stream hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Addr returns the bound address once Run is listening, or "".
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(fx.ReadStats()); err != nil {
		s.config.Logger.Error("inspect: encode stats", "error", err)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.config.Logger.Debug("inspect: request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start),
		)
	})
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return kerrors.New("CLI001").
			WithDetailf("listen on %s", s.config.Addr).
			Wrap(err)
	}

	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}

	s.mu.Lock()
	s.httpServer = httpServer
	s.addr = ln.Addr().String()
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.config.Logger.Info("inspector listening", "address", ln.Addr().String())
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown stops the HTTP server, disconnects event clients and
// unsubscribes from the queue.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.Close()

	s.mu.Lock()
	httpServer := s.httpServer
	s.mu.Unlock()

	if httpServer != nil {
		if err := httpServer.Shutdown(ctx); err != nil {
			s.config.Logger.Error("inspector shutdown error", "error", err)
			return err
		}
	}

	s.config.Logger.Info("inspector shutdown complete")
	return nil
}

// Close unsubscribes from the queue and disconnects event clients.
func (s *Server) Close() {
	s.mu.Lock()
	unobserve := s.unobserve
	s.unobserve = nil
	s.mu.Unlock()

	if unobserve != nil {
		unobserve()
	}
	s.hub.Close()
}
