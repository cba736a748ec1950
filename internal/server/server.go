// Package server implements the dashboard HTTP server: the HTML page,
// JSON data endpoints, rendered SVG views, and bookmark management.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gorilla/mux"

	"github.com/classmap/runtime/internal/httpconfig"
	"github.com/classmap/runtime/internal/logger"
	"github.com/classmap/runtime/internal/persistence"
	"github.com/classmap/runtime/internal/pipeline"
	"github.com/classmap/runtime/internal/render"
	"github.com/classmap/runtime/pkg/dashboard"
)

// Server serves the dashboard over HTTP.
type Server struct {
	cfg       *dashboard.Config
	executor  *pipeline.Executor
	bookmarks *persistence.BookmarkStore
	deps      render.Deps

	server   *http.Server
	listener net.Listener

	mu         sync.RWMutex
	running    bool
	actualAddr string

	shutdownOnce sync.Once
}

// New creates a dashboard server. The executor and render deps must be
// ready; the bookmark store may be nil, in which case the bookmark
// endpoints respond 404.
func New(cfg *dashboard.Config, executor *pipeline.Executor, bookmarks *persistence.BookmarkStore, deps render.Deps) *Server {
	return &Server{
		cfg:       cfg,
		executor:  executor,
		bookmarks: bookmarks,
		deps:      deps,
	}
}

// Router builds the route table. Exposed for tests.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handlePage).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/api/options", s.handleOptions).Methods(http.MethodGet)
	r.HandleFunc("/api/crosstab", s.handleCrossTab).Methods(http.MethodGet)
	r.HandleFunc("/api/choropleth", s.handleChoropleth).Methods(http.MethodGet)
	r.HandleFunc("/api/stats", s.handleStats).Methods(http.MethodGet)

	r.HandleFunc("/api/bookmarks", s.handleListBookmarks).Methods(http.MethodGet)
	r.HandleFunc("/api/bookmarks", s.handleSaveBookmark).Methods(http.MethodPost)
	r.HandleFunc("/api/bookmarks/{name}", s.handleGetBookmark).Methods(http.MethodGet)
	r.HandleFunc("/api/bookmarks/{name}", s.handleDeleteBookmark).Methods(http.MethodDelete)

	r.HandleFunc("/view/{type}.svg", s.handleView).Methods(http.MethodGet)

	return r
}

// Start starts the server and blocks until the context is canceled, an OS
// shutdown signal arrives, or the server fails. A listen address with port
// 0 is supported; Address reports the bound address.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("dashboard server already running")
	}
	s.running = true
	s.mu.Unlock()

	timeouts := httpconfig.GetTimeouts(s.cfg.Server)
	s.server = &http.Server{
		Addr:         s.cfg.Server.ListenAddress,
		Handler:      s.Router(),
		ReadTimeout:  timeouts.Read,
		WriteTimeout: timeouts.Write,
	}

	listener, err := net.Listen("tcp", s.cfg.Server.ListenAddress)
	if err != nil {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		logger.Error("failed to start dashboard server",
			"listenAddress", s.cfg.Server.ListenAddress,
			"error", err.Error(),
		)
		return fmt.Errorf("starting dashboard listener: %w", err)
	}
	s.listener = listener

	s.mu.Lock()
	s.actualAddr = listener.Addr().String()
	s.mu.Unlock()

	logger.Info("dashboard server started",
		"dashboard", s.cfg.Name,
		"address", s.actualAddr,
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalChan)

	select {
	case <-ctx.Done():
		logger.Info("dashboard server shutdown requested", "dashboard", s.cfg.Name)
		return s.shutdown()
	case sig := <-signalChan:
		logger.Info("dashboard server shutdown requested by signal",
			"dashboard", s.cfg.Name,
			"signal", sig.String(),
		)
		return s.shutdown()
	case err := <-serverErr:
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		if err != nil {
			return fmt.Errorf("dashboard server error: %w", err)
		}
		return nil
	}
}

// Stop gracefully stops the server, waiting for in-flight requests.
func (s *Server) Stop() error {
	return s.shutdown()
}

// shutdown performs graceful shutdown exactly once, even when Stop and
// context cancellation race.
func (s *Server) shutdown() error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.running {
			s.mu.Unlock()
			return
		}
		s.running = false
		s.mu.Unlock()

		timeouts := httpconfig.GetTimeouts(s.cfg.Server)
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()

		shutdownErr = s.server.Shutdown(ctx)
		if shutdownErr != nil {
			logger.Error("dashboard server shutdown error", "error", shutdownErr.Error())
			shutdownErr = fmt.Errorf("shutting down dashboard server: %w", shutdownErr)
			return
		}

		logger.Info("dashboard server stopped", "dashboard", s.cfg.Name)
	})

	return shutdownErr
}

// Address returns the actual bound address, useful with port 0.
// Empty until the server has started.
func (s *Server) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.actualAddr
}

// IsRunning reports whether the server is currently serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}
