// Package main is the entry point for the extraction service: it loads
// configuration, opens the run-history store, wires the pipeline, and
// serves the REST API and ops UI.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/mattn/go-sqlite3"

	"pbi-rag/internal/api"
	"pbi-rag/internal/app"
	"pbi-rag/internal/config"
	internaldb "pbi-rag/internal/db"
	"pbi-rag/internal/middleware"
	"pbi-rag/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("dotenv: %w", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	for _, warning := range cfg.Warnings {
		logger.Warn(warning)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// Run-history store: single-connection write pool, small read pool.
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create db directory: %w", err)
		}
	}
	writeDB, readDB, err := internaldb.OpenSQLitePair(cfg.DBPath, 4)
	if err != nil {
		return fmt.Errorf("open run history db: %w", err)
	}
	defer writeDB.Close()
	defer readDB.Close()

	if err := internaldb.RunMigrations(writeDB); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	application, err := app.New(ctx, app.Deps{
		Cfg:     cfg,
		WriteDB: writeDB,
		ReadDB:  readDB,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("wire application: %w", err)
	}

	validator, err := buildValidator(ctx, cfg)
	if err != nil {
		return fmt.Errorf("auth validator: %w", err)
	}

	handler := api.NewHandler(application.Pipeline, application.PowerBI, application.RunHistory, logger)
	uiHandler := ui.NewHandler(application.RunHistory, cfg, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}))
	}
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		}))
	}

	authMW := middleware.Auth(cfg, validator)

	// Health stays public for load balancer probes.
	r.Get("/health", handler.Health)

	r.Group(func(r chi.Router) {
		r.Use(authMW)
		handler.Routes(r)
	})

	r.Route("/ui", func(r chi.Router) {
		ui.MountRoutes(r, uiHandler, authMW)
	})

	if application.Scheduler != nil {
		if err := application.Scheduler.Start(); err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
		defer application.Scheduler.Stop()
	}

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("extraction service listening",
		"addr", cfg.ListenAddr,
		"auth_mode", cfg.AuthMode,
		"storage_backend", cfg.StorageBackend,
		"search_index", cfg.SearchIndexName,
	)
	logger.Info("service ready", "try", "curl http://"+curlHostForListenAddr(cfg.ListenAddr)+"/health")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// curlHostForListenAddr turns a listen address into a host suitable for a
// copy-pasteable curl hint. Wildcard binds map to localhost.
func curlHostForListenAddr(listenAddr string) string {
	addr := strings.TrimSpace(listenAddr)
	if addr == "" {
		return "localhost:8080"
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}

// buildValidator returns the token validator for the configured auth mode.
// Modes none and token need no validator.
func buildValidator(ctx context.Context, cfg *config.Config) (middleware.JWTValidator, error) {
	switch cfg.AuthMode {
	case config.AuthModeHS256:
		return middleware.NewSharedSecretValidator(cfg.JWTSecret), nil
	case config.AuthModeOIDC:
		return middleware.NewOIDCValidator(ctx, cfg.OIDCIssuer, cfg.OIDCAudience)
	default:
		return nil, nil
	}
}
