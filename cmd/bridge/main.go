// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/bridge-go/internal/api"
	"github.com/olegiv/bridge-go/internal/config"
	"github.com/olegiv/bridge-go/internal/logging"
	"github.com/olegiv/bridge-go/internal/store"
	"github.com/olegiv/bridge-go/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// apiPrefix is the path the bridge API is mounted under.
const apiPrefix = "/bridge-api"

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")
	rotateKey := flag.Bool("rotate-key", false, "Generate a new API key, invalidating the old one, and exit")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "bridge - content migration bridge API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BRIDGE_DB_PATH         SQLite database path (default: ./data/bridge.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BRIDGE_SERVER_PORT     Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BRIDGE_SITE_URL        Public base URL of the bridged site\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BRIDGE_UPLOADS_DIR     Directory migrated files are stored under (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BRIDGE_UPLOADS_URL     Public URL of the uploads directory (default: SITE_URL/uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BRIDGE_CONTENT_FORMAT  Stored body format: html|markdown (default: html)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BRIDGE_ENV             Environment: development|production (default: development)\n")
	}

	flag.Parse()

	// Handle -h/-help flag
	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	// Handle -v/-version flag
	if *showVersion {
		_, _ = fmt.Printf("bridge %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(*rotateKey); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(rotateKey bool) error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		err = db.Close()
		if err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	ctx := context.Background()
	keys := api.NewConfigKeySource(db)

	// Handle -rotate-key flag
	if rotateKey {
		key, err := keys.Rotate(ctx)
		if err != nil {
			return fmt.Errorf("rotating API key: %w", err)
		}
		_, _ = fmt.Printf("New API key: %s\n", key)
		return nil
	}

	// Upgrade logger to also write WARN and ERROR logs to the Event Log database
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	eventLogHandler := logging.NewEventLogHandler(textHandler, db)
	logger = slog.New(eventLogHandler)
	slog.SetDefault(logger)

	// Make sure an API key exists before the first request arrives
	key, created, err := keys.Bootstrap(ctx)
	if err != nil {
		return fmt.Errorf("bootstrapping API key: %w", err)
	}
	if created {
		slog.Info("generated API key", "key", key)
	}

	// Record the running bridge version; a mismatch with the stored value
	// means the process was upgraded in place.
	if err := recordInstalledVersion(ctx, db); err != nil {
		return fmt.Errorf("recording installed version: %w", err)
	}

	// Ensure the uploads directory exists
	if err := os.MkdirAll(cfg.UploadsDir, 0755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	handler, err := api.NewHandler(db, logger, cfg)
	if err != nil {
		return fmt.Errorf("creating API handler: %w", err)
	}

	limiter := api.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Mount(apiPrefix, handler.Routes(limiter))

	// Serve migrated files
	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(cfg.UploadsDir))))

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Longer to allow for large uploads and slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// recordInstalledVersion stores the running version in the config table,
// logging when it changed since the last start.
func recordInstalledVersion(ctx context.Context, db *sql.DB) error {
	queries := store.New(db)

	stored, err := queries.GetConfig(ctx, store.ConfigKeyInstalledVersion)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if stored != "" && stored != version.Bridge {
		slog.Info("bridge version changed", "from", stored, "to", version.Bridge)
	}
	return queries.SetConfig(ctx, store.ConfigKeyInstalledVersion, version.Bridge)
}
