// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Job statuses, shared by the job itself and its per-language progress.
const (
	JobStatusPending    = "pending"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// LanguageProgress tracks one target language within a job.
// Message is only populated when Status is failed.
type LanguageProgress struct {
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TranslationJob is a persisted multi-language translation request.
// It survives process restarts: re-entering in_progress via Resume recomputes
// the remaining work as requested minus completed languages.
type TranslationJob struct {
	ID           string                      `json:"id"`
	SourceID     int64                       `json:"source_id"`
	Languages    []string                    `json:"languages"` // requested targets, in request order
	Status       string                      `json:"status"`
	Progress     map[string]LanguageProgress `json:"progress"`
	Chunks       []string                    `json:"chunks,omitempty"`        // ordered source-text chunks
	Translated   map[int]string              `json:"translated,omitempty"`    // sparse chunk index -> translated chunk
	FieldMeta    map[string]string           `json:"field_meta,omitempty"`    // per-field source metadata
	FieldResults map[string]string           `json:"field_results,omitempty"` // per-field translated metadata
	ResultsLang  string                      `json:"results_lang,omitempty"`  // language the stored results belong to
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

// NewTranslationJob creates a pending job for the given source and targets.
func NewTranslationJob(sourceID int64, languages []string) *TranslationJob {
	now := time.Now()
	progress := make(map[string]LanguageProgress, len(languages))
	for _, lang := range languages {
		progress[lang] = LanguageProgress{Status: JobStatusPending, UpdatedAt: now}
	}
	return &TranslationJob{
		ID:        uuid.NewString(),
		SourceID:  sourceID,
		Languages: append([]string(nil), languages...),
		Status:    JobStatusPending,
		Progress:  progress,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Start moves the job into in_progress.
func (j *TranslationJob) Start() {
	j.Status = JobStatusInProgress
	j.UpdatedAt = time.Now()
}

// Resume re-enters in_progress from any non-terminal state.
// A completed job is terminal and cannot be resumed.
func (j *TranslationJob) Resume() error {
	if j.Status == JobStatusCompleted {
		return fmt.Errorf("job %s is completed and cannot be resumed", j.ID)
	}
	j.Status = JobStatusInProgress
	j.UpdatedAt = time.Now()
	return nil
}

// Complete marks the job completed. The caller is responsible for checking
// that no languages remain; the job does not enforce it.
func (j *TranslationJob) Complete() {
	j.Status = JobStatusCompleted
	j.UpdatedAt = time.Now()
}

// Fail marks the whole job failed.
func (j *TranslationJob) Fail() {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
}

// SetLanguageStatus updates progress for one language.
// The message is recorded only for failed transitions.
func (j *TranslationJob) SetLanguageStatus(lang, status, message string) {
	if j.Progress == nil {
		j.Progress = make(map[string]LanguageProgress)
	}
	p := LanguageProgress{Status: status, UpdatedAt: time.Now()}
	if status == JobStatusFailed {
		p.Message = message
	}
	j.Progress[lang] = p
	j.UpdatedAt = p.UpdatedAt
}

// RemainingLanguages returns requested languages not yet completed,
// in request order. Failed and in_progress languages still count as remaining.
func (j *TranslationJob) RemainingLanguages() []string {
	var remaining []string
	for _, lang := range j.Languages {
		if p, ok := j.Progress[lang]; !ok || p.Status != JobStatusCompleted {
			remaining = append(remaining, lang)
		}
	}
	return remaining
}

// IsTerminal returns true when the job can no longer change state.
func (j *TranslationJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// ClaimResults binds the stored chunk and field results to one target
// language. Results left over from a different language are discarded so a
// resumed run never persists text in the wrong language. Returns true when
// state changed and needs to be written back.
func (j *TranslationJob) ClaimResults(lang string) bool {
	if j.ResultsLang == lang {
		return false
	}
	j.ResultsLang = lang
	j.Translated = nil
	j.FieldResults = nil
	j.UpdatedAt = time.Now()
	return true
}

// SetChunk records a translated chunk at the given index.
func (j *TranslationJob) SetChunk(index int, translated string) {
	if j.Translated == nil {
		j.Translated = make(map[int]string)
	}
	j.Translated[index] = translated
	j.UpdatedAt = time.Now()
}

// MissingChunks returns indexes of source chunks without a translation yet.
func (j *TranslationJob) MissingChunks() []int {
	var missing []int
	for i := range j.Chunks {
		if _, ok := j.Translated[i]; !ok {
			missing = append(missing, i)
		}
	}
	return missing
}
