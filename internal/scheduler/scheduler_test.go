// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/olegiv/otrans-go/internal/engine"
	"github.com/olegiv/otrans-go/internal/model"
	"github.com/olegiv/otrans-go/internal/testutil"
)

type fakeJobSource struct {
	stale  []*model.TranslationJob
	cutoff time.Time
}

func (f *fakeJobSource) StaleInProgress(_ context.Context, cutoff time.Time) ([]*model.TranslationJob, error) {
	f.cutoff = cutoff
	return f.stale, nil
}

type fakeResumer struct {
	resumed []string
	err     error
}

func (f *fakeResumer) ResumeJob(_ context.Context, jobID string) (*engine.MultiResult, error) {
	f.resumed = append(f.resumed, jobID)
	if f.err != nil {
		return nil, f.err
	}
	return &engine.MultiResult{JobID: jobID, Translations: map[string]int64{"de": 1}}, nil
}

type fakeGapReporter struct {
	calls int
}

func (f *fakeGapReporter) Summary(context.Context) (*model.GapSummary, error) {
	f.calls++
	return &model.GapSummary{TotalItems: 2, TotalGaps: 3}, nil
}

func TestResumeStaleJobs(t *testing.T) {
	jobA := model.NewTranslationJob(1, []string{"de"})
	jobB := model.NewTranslationJob(2, []string{"fr"})
	jobs := &fakeJobSource{stale: []*model.TranslationJob{jobA, jobB}}
	resumer := &fakeResumer{}

	s := New(jobs, resumer, &fakeGapReporter{}, time.Hour, testutil.TestLogger())
	if err := s.resumeStaleJobs(); err != nil {
		t.Fatalf("resumeStaleJobs: %v", err)
	}

	if len(resumer.resumed) != 2 {
		t.Fatalf("resumed = %v, want both jobs", resumer.resumed)
	}
	if resumer.resumed[0] != jobA.ID || resumer.resumed[1] != jobB.ID {
		t.Errorf("resumed = %v", resumer.resumed)
	}

	// Cutoff reflects the configured threshold.
	age := time.Since(jobs.cutoff)
	if age < 59*time.Minute || age > 61*time.Minute {
		t.Errorf("cutoff age = %v, want about an hour", age)
	}
}

func TestResumeStaleJobsContinuesAfterFailure(t *testing.T) {
	jobA := model.NewTranslationJob(1, []string{"de"})
	jobB := model.NewTranslationJob(2, []string{"fr"})
	jobs := &fakeJobSource{stale: []*model.TranslationJob{jobA, jobB}}
	resumer := &fakeResumer{err: errors.New("backend down")}

	s := New(jobs, resumer, &fakeGapReporter{}, time.Hour, testutil.TestLogger())
	if err := s.resumeStaleJobs(); err != nil {
		t.Fatalf("resumeStaleJobs: %v", err)
	}
	// A failed resumption does not stop the sweep.
	if len(resumer.resumed) != 2 {
		t.Errorf("resumed = %v, want both attempts", resumer.resumed)
	}
}

func TestResumeStaleJobsNoWork(t *testing.T) {
	resumer := &fakeResumer{}
	s := New(&fakeJobSource{}, resumer, &fakeGapReporter{}, 0, testutil.TestLogger())

	if err := s.resumeStaleJobs(); err != nil {
		t.Fatalf("resumeStaleJobs: %v", err)
	}
	if len(resumer.resumed) != 0 {
		t.Errorf("resumed = %v, want none", resumer.resumed)
	}
	if s.cutoff != 30*time.Minute {
		t.Errorf("cutoff = %v, want 30m default", s.cutoff)
	}
}

func TestLogGapSummary(t *testing.T) {
	gaps := &fakeGapReporter{}
	s := New(&fakeJobSource{}, &fakeResumer{}, gaps, time.Hour, testutil.TestLogger())

	if err := s.logGapSummary(); err != nil {
		t.Fatalf("logGapSummary: %v", err)
	}
	if gaps.calls != 1 {
		t.Errorf("summary calls = %d", gaps.calls)
	}
}

func TestStartStop(t *testing.T) {
	s := New(&fakeJobSource{}, &fakeResumer{}, &fakeGapReporter{}, time.Hour, testutil.TestLogger())
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}
