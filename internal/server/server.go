// Package server provides the HTTP server implementation.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/gourl/msid/internal/config"
	"github.com/gourl/msid/internal/handlers"
	"github.com/gourl/msid/internal/metrics"
	"github.com/gourl/msid/internal/middleware"
	"github.com/gourl/msid/internal/repository"
)

// Server represents the HTTP server.
type Server struct {
	cfg            *config.Config
	log            *slog.Logger
	httpServer     *http.Server
	handler        http.Handler
	healthHandler  *handlers.HealthHandler
	idHandler      *handlers.IDHandler
	profileHandler *handlers.ProfileHandler
	profileRepo    repository.ProfileRepository
	listener       net.Listener
	running        bool
	mu             sync.RWMutex
}

// New creates a new Server instance.
func New(cfg *config.Config, log *slog.Logger) *Server {
	s := &Server{
		cfg:           cfg,
		log:           log,
		healthHandler: handlers.NewHealthHandler(),
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)
	s.handler = s.buildMiddlewareChain(mux)

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      s.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	return s
}

// buildMiddlewareChain creates the middleware chain for the server.
func (s *Server) buildMiddlewareChain(handler http.Handler) http.Handler {
	return middleware.New(
		middleware.Recover(s.log),
		middleware.Metrics(),
		middleware.RequestID(),
		middleware.Logging(s.log),
	).Then(handler)
}

// registerRoutes sets up the HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Health check routes (GET only)
	mux.HandleFunc("GET /health", s.healthHandler.Health)
	mux.HandleFunc("GET /ready", s.healthHandler.Ready)

	// Metrics endpoint for Prometheus
	mux.Handle("GET /metrics", metrics.Handler())

	// API v1 routes - identifiers
	mux.HandleFunc("POST /api/v1/ids", s.handleMint)
	mux.HandleFunc("GET /api/v1/ids/{id}", s.handleInspect)

	// API v1 routes - profiles
	mux.HandleFunc("POST /api/v1/profiles", s.handleCreateProfile)
	mux.HandleFunc("GET /api/v1/profiles", s.handleListProfiles)
	mux.HandleFunc("GET /api/v1/profiles/{name}", s.handleGetProfile)
	mux.HandleFunc("DELETE /api/v1/profiles/{name}", s.handleDeleteProfile)
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	if s.idHandler == nil {
		http.Error(w, "ID service not configured", http.StatusServiceUnavailable)
		return
	}
	s.idHandler.Mint(w, r)
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	if s.idHandler == nil {
		http.Error(w, "ID service not configured", http.StatusServiceUnavailable)
		return
	}
	s.idHandler.Inspect(w, r, r.PathValue("id"))
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	if s.profileHandler == nil {
		http.Error(w, "profile service not configured", http.StatusServiceUnavailable)
		return
	}
	s.profileHandler.Create(w, r)
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	if s.profileHandler == nil {
		http.Error(w, "profile service not configured", http.StatusServiceUnavailable)
		return
	}
	s.profileHandler.List(w, r)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	if s.profileHandler == nil {
		http.Error(w, "profile service not configured", http.StatusServiceUnavailable)
		return
	}
	s.profileHandler.Get(w, r, r.PathValue("name"))
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	if s.profileHandler == nil {
		http.Error(w, "profile service not configured", http.StatusServiceUnavailable)
		return
	}
	s.profileHandler.Delete(w, r, r.PathValue("name"))
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.cfg.Server.Address()

	// Listen first so Addr reports the real port when the configured one is 0.
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.running = true
	s.mu.Unlock()

	s.log.Info("server starting", "address", listener.Addr().String())

	err = s.httpServer.Serve(listener)
	if err != nil && err != http.ErrServerClosed {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("server shutting down")

	// Mark as not ready during shutdown
	s.healthHandler.SetReady(false)

	err := s.httpServer.Shutdown(ctx)

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	if err != nil {
		s.log.Error("shutdown error", "error", err.Error())
		return err
	}

	s.log.Info("server stopped")
	return nil
}

// IsRunning returns whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's address.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// HealthHandler returns the health handler.
func (s *Server) HealthHandler() *handlers.HealthHandler {
	return s.healthHandler
}

// SetProfileRepository sets the profile store and registers its health
// check with the readiness endpoint.
func (s *Server) SetProfileRepository(repo repository.ProfileRepository) {
	s.profileRepo = repo
	s.healthHandler.AddCheck("profiles", repo.HealthCheck)
}

// ProfileRepository returns the profile store.
func (s *Server) ProfileRepository() repository.ProfileRepository {
	return s.profileRepo
}

// SetIDHandler sets the identifier handler for the server.
func (s *Server) SetIDHandler(h *handlers.IDHandler) {
	s.idHandler = h
}

// IDHandler returns the identifier handler.
func (s *Server) IDHandler() *handlers.IDHandler {
	return s.idHandler
}

// SetProfileHandler sets the profile handler for the server.
func (s *Server) SetProfileHandler(h *handlers.ProfileHandler) {
	s.profileHandler = h
}

// ProfileHandler returns the profile handler.
func (s *Server) ProfileHandler() *handlers.ProfileHandler {
	return s.profileHandler
}
