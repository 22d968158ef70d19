// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/academy-go/internal/api"
	"github.com/olegiv/academy-go/internal/config"
	"github.com/olegiv/academy-go/internal/editor"
	"github.com/olegiv/academy-go/internal/handler"
	"github.com/olegiv/academy-go/internal/logging"
	"github.com/olegiv/academy-go/internal/middleware"
	"github.com/olegiv/academy-go/internal/model"
	"github.com/olegiv/academy-go/internal/render"
	"github.com/olegiv/academy-go/internal/scheduler"
	"github.com/olegiv/academy-go/internal/session"
	"github.com/olegiv/academy-go/internal/store"
	"github.com/olegiv/academy-go/internal/version"
	"github.com/olegiv/academy-go/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Academy - course and ebook site with an admin console\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ACADEMY_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ACADEMY_API_URL           REST backend origin (default: http://localhost:3000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ACADEMY_DB_PATH           SQLite database path (default: ./data/academy.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ACADEMY_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ACADEMY_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ACADEMY_REDIS_URL         Redis URL relaying session events between instances (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ACADEMY_HEALTH_SCHEDULE   Backend probe schedule, cron syntax (default: @every 1m)\n")
	}

	flag.Parse()

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Println(versionInfo.String())
		os.Exit(0)
	}

	if err := run(versionInfo); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(versionInfo version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

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
	slog.Info("starting", "version", versionInfo.String())

	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	if v, err := store.SchemaVersion(context.Background(), db); err == nil {
		slog.Info("database ready", "schema_version", v)
	}

	// Also write WARN and ERROR logs to the event log table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	sessionManager := session.New(db, cfg.IsDevelopment())
	sessions := session.NewStore(sessionManager)

	notifier := session.NewNotifier()
	if cfg.UseRedis() {
		rdb, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer func() { _ = rdb.Close() }()
		notifier = session.NewRedisNotifier(rdb, cfg.RedisChannel)
		slog.Info("session events relayed through redis", "channel", cfg.RedisChannel)
	}
	go func() {
		if err := notifier.Run(ctx); err != nil {
			slog.Error("session event relay stopped", "error", err)
		}
	}()
	select {
	case <-notifier.Ready():
	case <-time.After(5 * time.Second):
		slog.Warn("session event relay not ready, continuing", "category", model.EventCategorySystem)
	}

	client := api.NewClient(cfg.APIURL,
		api.WithTokenFunc(func(ctx context.Context) string {
			if rec := middleware.SessionFromContext(ctx); rec != nil {
				return rec.AccessToken
			}
			return ""
		}),
		api.WithDebug(cfg.IsDevelopment() && cfg.LogLevel == "debug"),
	)
	services := api.NewServices(client)
	slog.Info("backend client ready", "url", client.BaseURL())

	validator := editor.NewValidator()

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	sched := scheduler.New(client, db, logger, cfg.HealthSchedule)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	signupLimiter := middleware.NewFormRateLimiter(0.2, 3)

	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	staticHandler := http.StripPrefix("/static/dist/", http.FileServer(http.FS(staticFS)))

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.RequestPath)
	r.Use(middleware.SkipCSRF(handler.RouteHealth, handler.RouteHealthLive, handler.RouteSessionEvents))
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerAddr())))
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.LoadSession(sessions))

	handler.Register(r, handler.Handlers{
		Frontend:      handler.NewFrontendHandler(services.Courses, services.Ebooks, renderer, logger),
		Auth:          handler.NewAuthHandler(services.Auth, sessions, renderer, notifier, loginProtection, validator),
		Admin:         handler.NewAdminHandler(services.Courses, services.Ebooks, services.Users, db, sched, renderer),
		Courses:       handler.NewCoursesHandler(services.Courses, validator, renderer),
		Ebooks:        handler.NewEbooksHandler(services.Ebooks, validator, renderer),
		Users:         handler.NewUsersHandler(services.Users, renderer),
		SessionEvents: handler.NewSessionEventsHandler(notifier, handler.DefaultHeartbeat),
		Health:        handler.NewHealthHandler(db, sched),
	}, handler.RouteOptions{
		Timeout:         30 * time.Second,
		LoginProtection: loginProtection,
		FormLimiter:     signupLimiter,
		Static:          staticHandler,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second, // Reduced from 120s to mitigate slowloris attacks
		MaxHeaderBytes:    1 << 20,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Ends open session event streams, which Shutdown does not wait on.
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
