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

	"github.com/joho/godotenv"

	"github.com/olegiv/otrans-go/internal/cache"
	"github.com/olegiv/otrans-go/internal/config"
	"github.com/olegiv/otrans-go/internal/engine"
	"github.com/olegiv/otrans-go/internal/handler"
	"github.com/olegiv/otrans-go/internal/logging"
	"github.com/olegiv/otrans-go/internal/scanner"
	"github.com/olegiv/otrans-go/internal/scheduler"
	"github.com/olegiv/otrans-go/internal/store"
	"github.com/olegiv/otrans-go/internal/translate"
	"github.com/olegiv/otrans-go/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		info := version.Get()
		_, _ = fmt.Printf("otrans %s (commit: %s, built: %s)\n",
			info.Version, info.GitCommit, info.BuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

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
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})

	// Tee WARN and above into the in-memory event log served by the API.
	events := logging.NewEventRing(cfg.EventLogSize)
	logger := slog.New(logging.NewRingHandler(textHandler, events))
	slog.SetDefault(logger)

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
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
	slog.Info("database ready")

	ctx := context.Background()
	if err := store.Seed(ctx, db, cfg.DoSeed); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	// Stores
	contents := store.NewContentStore(db)
	jobs := store.NewJobStore(db)
	languageStore := store.NewLanguageStore(db)
	stringStore := store.NewStringStore(db)

	// Cache-fronted language view. Memory by default, Redis when configured
	// so several instances share invalidation.
	cacheType := "memory"
	if cfg.UseRedisCache() {
		cacheType = "redis"
	}
	cacheBackend, err := cache.New(cache.Config{
		Type:        cacheType,
		RedisURL:    cfg.RedisURL,
		RedisPrefix: cfg.CachePrefix,
		DefaultTTL:  cfg.CacheTTLDuration(),
	})
	if err != nil {
		slog.Warn("cache backend unavailable, falling back to memory", "error", err)
		cacheBackend, _ = cache.New(cache.Config{DefaultTTL: cfg.CacheTTLDuration()})
	}
	defer func() { _ = cacheBackend.Close() }()
	languages := cache.NewLanguages(cacheBackend, languageStore, cfg.CacheTTLDuration())
	slog.Info("cache initialized", "redis", cfg.UseRedisCache())

	// Provider adapters
	usage := logging.NewUsageRing(cfg.UsageLogSize)
	machine := translate.NewMachine(translate.MachineOptions{
		APIKey:            cfg.MTAPIKey,
		BaseURL:           cfg.MTBaseURL,
		RequestsPerSecond: cfg.MTRate,
		Usage:             usage,
		Logger:            logger,
	})
	llm := translate.NewLLM(translate.LLMOptions{
		Endpoint: cfg.LLMEndpoint,
		APIKey:   cfg.LLMAPIKey,
		Model:    cfg.LLMModel,
		Provider: cfg.LLMProvider,
		Usage:    usage,
		Logger:   logger,
	})
	slog.Info("translation providers configured",
		"machine", machine.IsConfigured(), "llm", llm.IsConfigured(), "llm_provider", cfg.LLMProvider)

	// Scanner and engine
	scan := scanner.New(contents, languages, stringStore, cfg.ChunkSize, logger)
	eng := engine.New(engine.Options{
		Contents:      contents,
		Jobs:          jobs,
		Languages:     languages,
		Gaps:          scan,
		Machine:       machine,
		LLM:           llm,
		DefaultStatus: cfg.DefaultStatus,
		ChunkSize:     cfg.ChunkSize,
		Logger:        logger,
	})

	// Background maintenance
	sched := scheduler.New(jobs, eng, scan, cfg.StaleJobCutoffDuration(), logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// HTTP API
	h := handler.New(handler.Options{
		Engine:  eng,
		Scanner: scan,
		Jobs:    jobs,
		Strings: stringStore,
		Events:  events,
		Usage:   usage,
		DB:      handler.PingerFunc(db.PingContext),
		Logger:  logger,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           h.Routes(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// Multi-language translation requests can run for minutes.
		WriteTimeout:   10 * time.Minute,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
