// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
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

	"github.com/olegiv/linkfolio-go/internal/analytics"
	"github.com/olegiv/linkfolio-go/internal/cache"
	"github.com/olegiv/linkfolio-go/internal/config"
	"github.com/olegiv/linkfolio-go/internal/handler"
	"github.com/olegiv/linkfolio-go/internal/logging"
	"github.com/olegiv/linkfolio-go/internal/middleware"
	"github.com/olegiv/linkfolio-go/internal/scheduler"
	"github.com/olegiv/linkfolio-go/internal/service"
	"github.com/olegiv/linkfolio-go/internal/session"
	"github.com/olegiv/linkfolio-go/internal/store"
	"github.com/olegiv/linkfolio-go/internal/upload"
	"github.com/olegiv/linkfolio-go/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "linkfolio - creator link-in-bio server\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LINKFOLIO_SESSION_SECRET  Session key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LINKFOLIO_UPLOAD_SECRET   Upload ticket HMAC key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LINKFOLIO_DB_PATH         SQLite database path (default: ./data/linkfolio.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LINKFOLIO_SERVER_PORT     Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LINKFOLIO_ENV             Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LINKFOLIO_REDIS_URL       Redis URL for the page cache (optional)\n")
	}

	flag.Parse()

	if *showVersion {
		_, _ = fmt.Printf("linkfolio %s (commit: %s, built: %s)\n",
			version.Version, version.GitCommit, version.BuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade the logger so WARN and ERROR records also land in the event log.
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	sessionManager := session.New(db, cfg.IsDevelopment())

	pageCache, err := cache.New(cache.Options{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() {
		if err := pageCache.Close(); err != nil {
			slog.Warn("error closing cache", "error", err)
		}
	}()
	if cfg.UseRedisCache() {
		slog.Info("page cache initialized", "backend", "redis")
	} else {
		slog.Info("page cache initialized", "backend", "memory")
	}

	linksService := service.NewLinksService(db)
	articleService := service.NewArticleService(db)
	viewTracker := analytics.NewViewTracker(articleService)
	ticketSigner := upload.NewSigner(cfg.UploadSecret, cfg.UploadBaseURL,
		time.Duration(cfg.UploadTicketTTL)*time.Second)

	sched, err := scheduler.New(db, articleService, logger)
	if err != nil {
		return fmt.Errorf("initializing scheduler: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	authHandler := handler.NewAuthHandler(db, sessionManager)
	linksHandler := handler.NewLinksHandler(linksService, pageCache)
	articlesHandler := handler.NewArticlesHandler(articleService)
	uploadHandler := handler.NewUploadHandler(ticketSigner)
	publicHandler := handler.NewPublicHandler(linksService, articleService, viewTracker, pageCache)
	healthHandler := handler.NewHealthHandler(db)

	apiRateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	csrfMiddleware := middleware.CSRF([]byte(cfg.SessionSecret), cfg.IsDevelopment())
	requireUser := middleware.RequireUser(sessionManager, db)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", healthHandler.Check)

	// Public pages
	r.Get("/@{handle}", publicHandler.Page)
	r.Get("/@{handle}/{slug}", publicHandler.Article)

	// JSON API
	r.Route("/api", func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(csrfMiddleware)
		r.Use(apiRateLimiter.Handler)

		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/me", authHandler.Me)

			r.Get("/links", linksHandler.Get)
			r.Put("/links", linksHandler.Update)
			r.Delete("/links", linksHandler.Delete)
			r.Put("/links/handle", linksHandler.UpdateHandle)
			r.Post("/links/publish", linksHandler.TogglePublish)

			r.Get("/articles", articlesHandler.List)
			r.Post("/articles", articlesHandler.Create)
			r.Post("/articles/import", articlesHandler.Import)
			r.Get("/articles/{id}", articlesHandler.Get)
			r.Put("/articles/{id}", articlesHandler.Update)
			r.Delete("/articles/{id}", articlesHandler.Delete)

			r.Post("/uploads/ticket", uploadHandler.Ticket)
		})
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
