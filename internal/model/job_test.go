// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"slices"
	"testing"
)

func TestNewTranslationJob(t *testing.T) {
	job := NewTranslationJob(42, []string{"de", "fr"})

	if job.ID == "" {
		t.Error("expected generated job ID")
	}
	if job.Status != JobStatusPending {
		t.Errorf("status = %q, want pending", job.Status)
	}
	if job.SourceID != 42 {
		t.Errorf("source = %d", job.SourceID)
	}
	for _, lang := range []string{"de", "fr"} {
		if job.Progress[lang].Status != JobStatusPending {
			t.Errorf("progress[%s] = %q, want pending", lang, job.Progress[lang].Status)
		}
	}
}

func TestRemainingLanguagesOrder(t *testing.T) {
	job := NewTranslationJob(1, []string{"de", "fr", "es"})
	job.SetLanguageStatus("fr", JobStatusCompleted, "")

	got := job.RemainingLanguages()
	want := []string{"de", "es"}
	if !slices.Equal(got, want) {
		t.Errorf("remaining = %v, want %v", got, want)
	}
}

func TestRemainingLanguagesCountsFailed(t *testing.T) {
	job := NewTranslationJob(1, []string{"de", "fr"})
	job.SetLanguageStatus("de", JobStatusFailed, "boom")
	job.SetLanguageStatus("fr", JobStatusCompleted, "")

	got := job.RemainingLanguages()
	if !slices.Equal(got, []string{"de"}) {
		t.Errorf("remaining = %v, want [de]", got)
	}
}

func TestResumeCompletedJobFails(t *testing.T) {
	job := NewTranslationJob(1, []string{"de"})
	job.Complete()

	if err := job.Resume(); err == nil {
		t.Error("expected error resuming a completed job")
	}
}

func TestResumeFailedJob(t *testing.T) {
	job := NewTranslationJob(1, []string{"de"})
	job.Fail()

	if err := job.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if job.Status != JobStatusInProgress {
		t.Errorf("status = %q, want in_progress", job.Status)
	}
}

func TestSetLanguageStatusMessageOnlyOnFailure(t *testing.T) {
	job := NewTranslationJob(1, []string{"de"})

	job.SetLanguageStatus("de", JobStatusCompleted, "ignored")
	if job.Progress["de"].Message != "" {
		t.Errorf("completed progress carries message %q", job.Progress["de"].Message)
	}

	job.SetLanguageStatus("de", JobStatusFailed, "provider down")
	if job.Progress["de"].Message != "provider down" {
		t.Errorf("failed progress message = %q", job.Progress["de"].Message)
	}
}

func TestChunkTracking(t *testing.T) {
	job := NewTranslationJob(1, []string{"de"})
	job.Chunks = []string{"a", "b", "c"}

	job.SetChunk(0, "A")
	job.SetChunk(2, "C")

	missing := job.MissingChunks()
	if !slices.Equal(missing, []int{1}) {
		t.Errorf("missing = %v, want [1]", missing)
	}
}

func TestIsTerminal(t *testing.T) {
	job := NewTranslationJob(1, []string{"de"})
	if job.IsTerminal() {
		t.Error("pending job reported terminal")
	}
	job.Complete()
	if !job.IsTerminal() {
		t.Error("completed job not terminal")
	}
}
