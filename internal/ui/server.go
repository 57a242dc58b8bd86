// Package ui provides the browser data viewer server.
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
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/csvview/internal/csvconvert"
	"github.com/leapstack-labs/csvview/internal/ui/notifier"
	"github.com/leapstack-labs/csvview/internal/ui/router"
	"github.com/leapstack-labs/csvview/internal/ui/session"
	"github.com/leapstack-labs/csvview/internal/viewer"
	"github.com/leapstack-labs/csvview/pkg/core"
)

// Server is the main UI server.
type Server struct {
	converter    *csvconvert.Converter
	registry     *viewer.Registry
	sessionStore *sessions.CookieStore
	port         int
	watch        bool
	dev          bool
	caps         []int
	logger       *slog.Logger
	notifier     *notifier.Notifier
}

// Config holds configuration for the UI server.
type Config struct {
	// Converter serves /api/csv-convert from local files. Nil leaves the
	// endpoint unmounted, for when Endpoint points elsewhere.
	Converter *csvconvert.Converter
	// Loader overrides how controllers fetch rows. When nil, rows are
	// fetched over HTTP from Endpoint, or from this server when Endpoint is
	// empty.
	Loader         viewer.Loader
	Endpoint       string
	Port           int
	Watch          bool
	Dev            bool
	SessionSecret  string
	SessionTTL     time.Duration
	DefaultDataset core.DatasetID
	DefaultCap     int
	Caps           []int
	ColumnOrders   viewer.ColumnOrders
	Logger         *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	loader := cfg.Loader
	if loader == nil {
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = fmt.Sprintf("http://127.0.0.1:%d", cfg.Port)
		}
		loader = viewer.NewHTTPLoader(endpoint, nil)
	}

	notify := notifier.New()
	registry := viewer.NewRegistry(func(key string) *viewer.Controller {
		return viewer.New(viewer.Config{
			Loader:       loader,
			Logger:       cfg.Logger.With("session", key),
			Dataset:      cfg.DefaultDataset,
			RowCap:       cfg.DefaultCap,
			ColumnOrders: cfg.ColumnOrders,
			OnChange: func(viewer.Snapshot) {
				notify.Notify(key)
			},
		})
	}, cfg.SessionTTL, cfg.Logger)

	return &Server{
		converter:    cfg.Converter,
		registry:     registry,
		sessionStore: session.NewCookieStore(cfg.SessionSecret),
		port:         cfg.Port,
		watch:        cfg.Watch,
		dev:          cfg.Dev,
		caps:         cfg.Caps,
		logger:       cfg.Logger,
		notifier:     notify,
	}
}

// Handler builds the server's HTTP handler.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	deps := router.Deps{
		Registry:     s.registry,
		SessionStore: s.sessionStore,
		Notifier:     s.notifier,
		Caps:         s.caps,
	}
	if s.converter != nil {
		deps.Converter = s.converter
	}
	if err := router.SetupRoutes(r, deps, s.IsDev()); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Evict the conversion cache when source files change
	if s.watch && s.converter != nil {
		eg.Go(func() error {
			return s.converter.Watch(egctx)
		})
	}

	// Drop idle viewer sessions
	eg.Go(func() error {
		return s.registry.Run(egctx, 0)
	})

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// IsDev returns true if running in development mode.
func (s *Server) IsDev() bool {
	return s.dev
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Registry returns the per-session controller registry.
func (s *Server) Registry() *viewer.Registry {
	return s.registry
}
