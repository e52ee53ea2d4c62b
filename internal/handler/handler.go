// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the REST API of the translation service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/otrans-go/internal/engine"
	"github.com/olegiv/otrans-go/internal/logging"
	"github.com/olegiv/otrans-go/internal/model"
	"github.com/olegiv/otrans-go/internal/scanner"
)

// TranslationEngine is the engine surface the handlers call.
type TranslationEngine interface {
	TranslatePost(ctx context.Context, sourceID int64, targetLang string, improve bool) (int64, error)
	TranslateAllLanguages(ctx context.Context, sourceID int64, languages []string) (*engine.MultiResult, error)
	RetranslatePost(ctx context.Context, itemID int64) (int64, error)
	TranslateText(ctx context.Context, text, targetLang, sourceLang string) (string, error)
	ResumeJob(ctx context.Context, jobID string) (*engine.MultiResult, error)
	CreateDrafts(ctx context.Context, requests []engine.DraftRequest) (*engine.DraftReport, error)
	CreateDraftsFromGaps(ctx context.Context, filters scanner.GapFilters) (*engine.DraftReport, error)
	PendingTranslations(ctx context.Context) ([]model.PendingTranslation, error)
}

// GapScanner is the scanner surface the handlers call.
type GapScanner interface {
	FindGaps(ctx context.Context, filters scanner.GapFilters) ([]model.TranslationGap, error)
	Summary(ctx context.Context) (*model.GapSummary, error)
	FindExistingTranslations(ctx context.Context, filters scanner.ExistingFilters) ([]model.ExistingTranslation, error)
	StringCatalog(ctx context.Context) ([]model.UIStringStatus, error)
}

// JobReader loads persisted jobs for status endpoints.
type JobReader interface {
	Get(ctx context.Context, id string) (*model.TranslationJob, error)
}

// StringWriter manages the registered UI string catalog.
type StringWriter interface {
	Register(ctx context.Context, str model.UIString) error
	SetTranslation(ctx context.Context, lang, source, value string) error
}

// Pinger checks a backing service for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to the Pinger interface.
type PingerFunc func(ctx context.Context) error

// Ping calls f.
func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	engine  TranslationEngine
	scanner GapScanner
	jobs    JobReader
	strings StringWriter
	events  *logging.EventRing
	usage   *logging.UsageRing
	db      Pinger
	logger  *slog.Logger
}

// Options configures the handler.
type Options struct {
	Engine  TranslationEngine
	Scanner GapScanner
	Jobs    JobReader
	Strings StringWriter
	Events  *logging.EventRing
	Usage   *logging.UsageRing
	DB      Pinger
	Logger  *slog.Logger
}

// New creates an API handler.
func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		engine:  opts.Engine,
		scanner: opts.Scanner,
		jobs:    opts.Jobs,
		strings: opts.Strings,
		events:  opts.Events,
		usage:   opts.Usage,
		db:      opts.DB,
		logger:  logger,
	}
}

// Routes builds the API router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/translate", func(r chi.Router) {
			r.Post("/text", h.TranslateText)
			r.Post("/{id}", h.TranslatePost)
			r.Post("/{id}/all", h.TranslateAll)
			r.Post("/{id}/retranslate", h.Retranslate)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/{id}", h.GetJob)
			r.Post("/{id}/resume", h.ResumeJob)
		})

		r.Route("/gaps", func(r chi.Router) {
			r.Get("/", h.Gaps)
			r.Get("/summary", h.GapSummary)
		})
		r.Get("/translations/existing", h.ExistingTranslations)

		r.Route("/strings", func(r chi.Router) {
			r.Get("/", h.StringCatalog)
			r.Post("/", h.RegisterString)
			r.Put("/translation", h.SetStringTranslation)
		})

		r.Route("/drafts", func(r chi.Router) {
			r.Post("/", h.CreateDrafts)
			r.Get("/pending", h.PendingDrafts)
		})

		r.Get("/log", h.EventLog)
		r.Get("/usage", h.UsageLog)
	})

	return r
}
