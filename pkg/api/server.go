package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/yourusername/gammon/internal/storage"
	"github.com/yourusername/gammon/internal/timecontrol"
)

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Host            string        // Host to bind to (default "localhost")
	Port            int           // Port to listen on (default 8080)
	ReadTimeout     time.Duration // Read timeout (default 30s)
	WriteTimeout    time.Duration // Write timeout (default 30s)
	IdleTimeout     time.Duration // Idle timeout (default 60s)
	ShutdownTimeout time.Duration // Graceful shutdown deadline (default 10s)
	Gate            GateConfig    // Admission bounds per operation class
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "localhost",
		Port:            8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Gate:            DefaultGateConfig(),
	}
}

// Server is the HTTP API server.
type Server struct {
	config   ServerConfig
	handlers *Handlers
	server   *http.Server
	gate     *Gate
	logger   *zap.Logger
	version  string
}

// NewServer creates a new API server backed by the given storage.
func NewServer(store storage.Storage, logger *zap.Logger, tc timecontrol.Config, config ServerConfig, version string) *Server {
	gate := NewGate(config.Gate)
	handlers := NewHandlers(store, logger, tc, gate, version)

	return &Server{
		config:   config,
		handlers: handlers,
		gate:     gate,
		logger:   logger,
		version:  version,
	}
}

// Handlers exposes the handler set, for tests.
func (s *Server) Handlers() *Handlers { return s.handlers }

// Gate returns the admission gate for monitoring.
func (s *Server) Gate() *Gate { return s.gate }

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs all requests.
func loggingMiddleware(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", time.Since(start)))
		})
	}
}

// Router configures all API routes.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	h := s.handlers

	r.HandleFunc("/api/health", h.Health).Methods(http.MethodGet)

	r.HandleFunc("/api/matches", h.CreateMatch).Methods(http.MethodPost)
	r.HandleFunc("/api/matches", h.ListMatches).Methods(http.MethodGet)
	r.HandleFunc("/api/matches/{id}", h.GetMatch).Methods(http.MethodGet)
	r.HandleFunc("/api/matches/{id}", h.DeleteMatch).Methods(http.MethodDelete)

	r.HandleFunc("/api/matches/{id}/opening-roll", h.OpeningRoll).Methods(http.MethodPost)
	r.HandleFunc("/api/matches/{id}/roll", h.Roll).Methods(http.MethodPost)
	r.HandleFunc("/api/matches/{id}/moves", h.ValidMoves).Methods(http.MethodGet)
	r.HandleFunc("/api/matches/{id}/move", h.Move).Methods(http.MethodPost)
	r.HandleFunc("/api/matches/{id}/undo", h.Undo).Methods(http.MethodPost)
	r.HandleFunc("/api/matches/{id}/end-turn", h.EndTurn).Methods(http.MethodPost)
	r.HandleFunc("/api/matches/{id}/cube", h.Cube).Methods(http.MethodPost)
	r.HandleFunc("/api/matches/{id}/forfeit", h.Forfeit).Methods(http.MethodPost)
	r.HandleFunc("/api/matches/{id}/next-game", h.NextGame).Methods(http.MethodPost)

	r.HandleFunc("/api/matches/{id}/record", h.ExportRecord).Methods(http.MethodGet)
	r.HandleFunc("/api/matches/{id}/record/{n}", h.GetGameRecord).Methods(http.MethodGet)
	r.HandleFunc("/api/matches/{id}/position", h.ExportPosition).Methods(http.MethodGet)
	r.HandleFunc("/api/positions", h.ImportPosition).Methods(http.MethodPost)

	r.HandleFunc("/api/matches/{id}/events", h.Events).Methods(http.MethodGet)
	r.HandleFunc("/api/ws", h.WebSocket)

	r.Use(loggingMiddleware(s.logger))
	return corsMiddleware(r)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	s.logger.Info("starting server",
		zap.String("addr", addr),
		zap.String("version", s.version))

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// ListenAndServeWithGracefulShutdown starts the server and stops it
// cleanly on SIGINT/SIGTERM.
func (s *Server) ListenAndServeWithGracefulShutdown() error {
	errChan := make(chan error, 1)

	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		s.logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
