package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/emtpl"
	"github.com/vango-dev/emtpl/pkg/metrics"
	"github.com/vango-dev/emtpl/pkg/middleware"
)

// Middleware is a function that wraps an HTTP handler.
type Middleware func(http.Handler) http.Handler

// Server serves an Engine over HTTP and WebSocket.
type Server struct {
	engine   *emtpl.Engine
	config   *ServerConfig
	router   chi.Router
	upgrader websocket.Upgrader
	metrics  *metrics.Collector
	logger   *slog.Logger

	httpServer *http.Server

	mu       sync.Mutex
	sessions map[string]*Session
	closing  bool
}

// New creates a Server for engine. Extra middleware runs inside the
// server's own recovery, logging and tracing middleware.
func New(engine *emtpl.Engine, config *ServerConfig, mw ...Middleware) *Server {
	config = config.withDefaults()
	logger := engine.Logger().With("component", "server")

	s := &Server{
		engine: engine,
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		metrics:  engine.Metrics(),
		logger:   logger,
		sessions: make(map[string]*Session),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recover(logger), middleware.Logger(logger), middleware.OpenTelemetry())
	for _, m := range mw {
		r.Use(m)
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Post("/render", s.handleRender)
	r.Route("/templates", func(r chi.Router) {
		r.Get("/", s.handleListTemplates)
		r.Get("/{name}", s.handleTemplate)
	})
	r.Route("/snapshots", func(r chi.Router) {
		r.Get("/", s.handleListSnapshots)
		r.Get("/{name}", s.handleSnapshot)
		r.Delete("/{name}", s.handleDeleteSnapshot)
	})
	r.Handle("/metrics", promhttp.HandlerFor(config.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/live", s.HandleWebSocket)
	s.router = r

	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run starts the server and blocks until ctx is done, an interrupt
// arrives, or listening fails.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.config.Address,
		Handler:      s,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every live session and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.mu.Lock()
	s.closing = true
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()
	for _, sess := range sessions {
		sess.Close()
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("server shutdown complete")
	return nil
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Config returns the server configuration.
func (s *Server) Config() *ServerConfig {
	return s.config
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// HandleWebSocket upgrades the request and runs a live session until the
// connection closes.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		if s.metrics != nil {
			s.metrics.WebSocketError("upgrade")
		}
		return
	}

	sess := newSession(conn, s)
	if !s.register(sess) {
		sess.Close()
		return
	}
	defer s.unregister(sess)

	go sess.WriteLoop()
	sess.ReadLoop()
}

func (s *Server) register(sess *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.sessions[sess.ID] = sess
	if s.metrics != nil {
		s.metrics.SessionOpened()
	}
	s.logger.Debug("session opened", "session_id", sess.ID)
	return true
}

func (s *Server) unregister(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID]; !ok {
		return
	}
	delete(s.sessions, sess.ID)
	if s.metrics != nil {
		s.metrics.SessionClosed()
	}
	s.logger.Debug("session closed", "session_id", sess.ID)
}
