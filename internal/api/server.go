// Package api provides the HTTP façade over the LeapML pipeline.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/leapml/internal/api/features/common"
	"github.com/leapstack-labs/leapml/internal/api/router"
	"github.com/leapstack-labs/leapml/internal/engine"
	"golang.org/x/sync/errgroup"
)

// DefaultPort matches the port the frontend expects.
const DefaultPort = 5000

// Server is the API server.
type Server struct {
	engine         *engine.Engine
	sessionStore   *sessions.CookieStore
	port           int
	corsOrigins    []string
	maxUploadBytes int64
	logger         *slog.Logger
}

// Config holds configuration for the API server.
type Config struct {
	Engine        *engine.Engine
	Port          int
	SessionSecret string
	// CORSOrigins defaults to every origin.
	CORSOrigins []string
	MaxUploadMB int
	Logger      *slog.Logger
}

// NewServer creates a new API server instance. The session secret is required.
func NewServer(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	store, err := common.NewSessionStore(cfg.SessionSecret)
	if err != nil {
		return nil, err
	}

	return &Server{
		engine:         cfg.Engine,
		sessionStore:   store,
		port:           port,
		corsOrigins:    origins,
		maxUploadBytes: int64(cfg.MaxUploadMB) << 20,
		logger:         logger,
	}, nil
}

// Handler builds the routed, middleware-wrapped handler.
func (s *Server) Handler() (http.Handler, error) {
	corsOpts := cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if slices.Contains(s.corsOrigins, "*") {
		// Browsers drop credentialed responses carrying a literal "*", so any
		// origin is echoed back instead and the session cookie round-trips.
		corsOpts.AllowOriginFunc = func(*http.Request, string) bool { return true }
	} else {
		corsOpts.AllowedOrigins = s.corsOrigins
	}

	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
		cors.Handler(corsOpts),
	)

	if err := router.SetupRoutes(r, s.engine, s.sessionStore, s.maxUploadBytes, s.logger); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the API server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.logger.Info("starting API server", "addr", ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down API server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
