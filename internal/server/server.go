// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: the entire dependency chain
// (sqlite.DB → SleepLogService → SleepLogHandler → routes) is wired here,
// so main.go stays minimal and the rest of the codebase never constructs
// its own collaborators.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/alexandruivv/sleep-app/internal/handler"
	"github.com/alexandruivv/sleep-app/internal/middleware"
	sqliteRepo "github.com/alexandruivv/sleep-app/internal/repository/sqlite"
	"github.com/alexandruivv/sleep-app/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port   int
	DBPath string
}

// Server owns the router and the database connection; the connection is
// closed during graceful shutdown so the WAL is flushed and the file lock
// released.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server with all dependencies wired.
//
// Each layer only receives what it needs: the service gets the repository
// interfaces (which *sqlite.DB implements), the handler gets the service,
// and the router gets the handler. Nothing below the handler knows HTTP;
// nothing above the repository knows SQL.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	s.setupRoutes()

	return s, nil
}

// setupRoutes configures middleware and routes.
//
// ROUTE STRUCTURE:
//
//	GET  /healthz                          → liveness probe
//	POST /sleep-log                        → create last night's log
//	GET  /sleep-log                        → get today's log
//	GET  /sleep-log/averages/last-30-days  → 30-day averages report
//
// Every /sleep-log route sits behind the UserID middleware, so handlers can
// assume a parsed user id is in the context.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID) // Adds X-Request-ID header
	s.router.Use(chimiddleware.RealIP)    // Extracts real IP from X-Forwarded-For
	s.router.Use(chimiddleware.Recoverer) // Recovers from panics, returns 500
	s.router.Use(middleware.Logger(s.logger))

	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	sleepService := service.NewSleepLogService(s.db, s.db, s.logger)
	sleepHandler := handler.NewSleepLogHandler(sleepService, s.logger)

	s.router.Route("/sleep-log", func(r chi.Router) {
		r.Use(middleware.UserID)
		r.Post("/", sleepHandler.HandleCreate)
		r.Get("/", sleepHandler.HandleGetLastNight)
		r.Get("/averages/last-30-days", sleepHandler.HandleAverages)
	})
}

// Start runs the HTTP server and blocks until shutdown.
//
// Graceful shutdown: stop accepting connections, give in-flight requests
// 30 seconds to finish, then close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
