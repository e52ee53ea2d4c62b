// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs background maintenance: resuming translation jobs
// that were interrupted mid-run and logging a periodic gap summary.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/otrans-go/internal/engine"
	"github.com/olegiv/otrans-go/internal/model"
)

// JobSource lists jobs eligible for automatic resumption.
type JobSource interface {
	StaleInProgress(ctx context.Context, cutoff time.Time) ([]*model.TranslationJob, error)
}

// Resumer re-runs the remaining languages of a job.
type Resumer interface {
	ResumeJob(ctx context.Context, jobID string) (*engine.MultiResult, error)
}

// GapReporter produces the periodic gap summary.
type GapReporter interface {
	Summary(ctx context.Context) (*model.GapSummary, error)
}

// Scheduler handles periodic maintenance tasks.
type Scheduler struct {
	jobs    JobSource
	resumer Resumer
	gaps    GapReporter
	cutoff  time.Duration
	cron    *cron.Cron
	logger  *slog.Logger
}

// New creates a scheduler. cutoff is how long an in_progress job may go
// without an update before it is considered stale and resumed.
func New(jobs JobSource, resumer Resumer, gaps GapReporter, cutoff time.Duration, logger *slog.Logger) *Scheduler {
	if cutoff <= 0 {
		cutoff = 30 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		jobs:    jobs,
		resumer: resumer,
		gaps:    gaps,
		cutoff:  cutoff,
		cron:    cron.New(),
		logger:  logger,
	}
}

// Start registers the cron entries and begins the scheduler.
func (s *Scheduler) Start() error {
	// Check for stale jobs every five minutes.
	if _, err := s.cron.AddFunc("*/5 * * * *", func() {
		if err := s.resumeStaleJobs(); err != nil {
			s.logger.Error("failed to resume stale jobs", "error", err)
		}
	}); err != nil {
		return err
	}

	// Log the gap summary once an hour.
	if _, err := s.cron.AddFunc("0 * * * *", func() {
		if err := s.logGapSummary(); err != nil {
			s.logger.Error("failed to compute gap summary", "error", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running tasks.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// resumeStaleJobs picks up in_progress jobs whose owner stopped updating
// them, typically after a crash or restart, and runs their remaining
// languages to completion.
func (s *Scheduler) resumeStaleJobs() error {
	ctx := context.Background()

	jobs, err := s.jobs.StaleInProgress(ctx, time.Now().Add(-s.cutoff))
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return nil
	}

	s.logger.Info("resuming stale translation jobs", "count", len(jobs))
	for _, job := range jobs {
		result, err := s.resumer.ResumeJob(ctx, job.ID)
		if err != nil {
			s.logger.Error("stale job resumption failed",
				"job", job.ID, "source", job.SourceID, "error", err)
			continue
		}
		s.logger.Info("stale job resumed",
			"job", job.ID,
			"translated", len(result.Translations),
			"failed", len(result.Errors))
	}
	return nil
}

// logGapSummary records the current translation coverage.
func (s *Scheduler) logGapSummary() error {
	ctx := context.Background()

	summary, err := s.gaps.Summary(ctx)
	if err != nil {
		return err
	}

	s.logger.Info("translation gap summary",
		"items", summary.TotalItems,
		"gaps", summary.TotalGaps,
		"languages", len(summary.ByLanguage))
	return nil
}
