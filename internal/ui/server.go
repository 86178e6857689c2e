// Package ui serves a browser console for the orchestrator.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/portugo/internal/orchestrator"
	"github.com/leapstack-labs/portugo/internal/state"
	consoleFeature "github.com/leapstack-labs/portugo/internal/ui/features/console"
	"github.com/leapstack-labs/portugo/internal/ui/notifier"
	"github.com/leapstack-labs/portugo/internal/ui/router"
)

const shutdownTimeout = 5 * time.Second

// Config holds configuration for the console server.
type Config struct {
	Orchestrator *orchestrator.Orchestrator
	// Store is optional; without it /console/history answers 404.
	Store  state.Store
	Addr   string
	Logger *slog.Logger
}

// Server hosts one orchestrator for browser clients.
type Server struct {
	orch     *orchestrator.Orchestrator
	store    state.Store
	addr     string
	logger   *slog.Logger
	notifier *notifier.Notifier
}

// NewServer creates a new console server.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		orch:     cfg.Orchestrator,
		store:    cfg.Store,
		addr:     cfg.Addr,
		logger:   logger,
		notifier: notifier.New(),
	}
}

// Handler builds the router. The returned cleanup stops forwarding console
// updates to clients.
func (s *Server) Handler() (http.Handler, func(), error) {
	follow := s.notifier.Follow(s.orch)
	console := consoleFeature.NewHandlers(s.orch, s.store, s.notifier, s.logger)
	cleanup := func() {
		follow.Release()
		console.Close()
	}

	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
	)
	if err := router.SetupRoutes(r, console); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, cleanup, nil
}

// Serve listens on the configured address and blocks until ctx is
// cancelled. The running program is stopped on the way out.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	handler, cleanup, err := s.Handler()
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer cleanup()
	defer s.orch.Stop()

	s.logger.Info("starting console server", "addr", "http://"+ln.Addr().String())

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
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down console server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
