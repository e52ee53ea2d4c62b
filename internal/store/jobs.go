// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/otrans-go/internal/model"
)

// JobStore persists translation jobs. Per-language progress updates use a
// read-modify-write cycle inside a transaction so that two processes
// finishing different languages do not clobber each other's entries.
type JobStore struct {
	db *sql.DB
}

// NewJobStore creates a job store backed by the given database.
func NewJobStore(db *sql.DB) *JobStore {
	return &JobStore{db: db}
}

// Create persists a new job.
func (s *JobStore) Create(ctx context.Context, job *model.TranslationJob) error {
	languages, progress, chunks, translated, fieldMeta, fieldResults, err := marshalJobFields(job)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO translation_jobs (id, source_id, languages, status, progress, chunks, translated, field_meta, field_results, results_lang, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.SourceID, languages, job.Status, progress, chunks, translated,
		fieldMeta, fieldResults, job.ResultsLang, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating job %s: %w", job.ID, err)
	}
	return nil
}

// Get loads a job by ID.
func (s *JobStore) Get(ctx context.Context, id string) (*model.TranslationJob, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source_id, languages, status, progress, chunks, translated, field_meta, field_results, results_lang, created_at, updated_at
		FROM translation_jobs WHERE id = ?`, id)
	return scanJob(row)
}

// Update rewrites the job row except the progress column: per-language
// progress is written only at Create and through SetLanguageProgress merges,
// so two runs finishing different languages cannot clobber each other's
// completed entries through a full-row write.
func (s *JobStore) Update(ctx context.Context, job *model.TranslationJob) error {
	languages, _, chunks, translated, fieldMeta, fieldResults, err := marshalJobFields(job)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE translation_jobs
		SET source_id = ?, languages = ?, status = ?, chunks = ?, translated = ?, field_meta = ?, field_results = ?, results_lang = ?, updated_at = ?
		WHERE id = ?`,
		job.SourceID, languages, job.Status, chunks, translated,
		fieldMeta, fieldResults, job.ResultsLang, time.Now(), job.ID)
	if err != nil {
		return fmt.Errorf("updating job %s: %w", job.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating job %s: %w", job.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus updates only the job status.
func (s *JobStore) SetStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE translation_jobs SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("setting status of job %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("setting status of job %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetLanguageProgress merges one language's progress entry into the stored
// progress map, preserving all other languages' entries.
func (s *JobStore) SetLanguageProgress(ctx context.Context, id, lang string, p model.LanguageProgress) error {
	return s.mergeJSONColumn(ctx, id, "progress", func(raw []byte) ([]byte, error) {
		progress := make(map[string]model.LanguageProgress)
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &progress); err != nil {
				return nil, fmt.Errorf("decoding progress of job %s: %w", id, err)
			}
		}
		progress[lang] = p
		return json.Marshal(progress)
	})
}

// SetChunkResult merges one translated chunk into the stored chunk map.
func (s *JobStore) SetChunkResult(ctx context.Context, id string, index int, translated string) error {
	return s.mergeJSONColumn(ctx, id, "translated", func(raw []byte) ([]byte, error) {
		chunkMap := make(map[int]string)
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &chunkMap); err != nil {
				return nil, fmt.Errorf("decoding chunk results of job %s: %w", id, err)
			}
		}
		chunkMap[index] = translated
		return json.Marshal(chunkMap)
	})
}

// mergeJSONColumn runs a read-modify-write cycle on one JSON column inside a
// transaction. Connections are opened with _txlock=immediate, so the write
// lock is held from the read onward and the cycle is atomic with respect to
// other merge calls.
func (s *JobStore) mergeJSONColumn(ctx context.Context, id, column string, merge func([]byte) ([]byte, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning merge transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw []byte
	// column is an internal constant, never user input
	err = tx.QueryRowContext(ctx,
		`SELECT `+column+` FROM translation_jobs WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading %s of job %s: %w", column, id, err)
	}

	merged, err := merge(raw)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE translation_jobs SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		merged, time.Now(), id); err != nil {
		return fmt.Errorf("writing %s of job %s: %w", column, id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing merge transaction: %w", err)
	}
	return nil
}

// ListByStatus returns jobs with the given status, oldest first.
func (s *JobStore) ListByStatus(ctx context.Context, status string) ([]*model.TranslationJob, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_id, languages, status, progress, chunks, translated, field_meta, field_results, results_lang, created_at, updated_at
		FROM translation_jobs WHERE status = ? ORDER BY created_at ASC`, status)
	if err != nil {
		return nil, fmt.Errorf("listing jobs by status %q: %w", status, err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []*model.TranslationJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating job rows: %w", err)
	}
	return jobs, nil
}

// StaleInProgress returns in_progress jobs not updated since the cutoff.
func (s *JobStore) StaleInProgress(ctx context.Context, cutoff time.Time) ([]*model.TranslationJob, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_id, languages, status, progress, chunks, translated, field_meta, field_results, results_lang, created_at, updated_at
		FROM translation_jobs WHERE status = ? AND updated_at < ? ORDER BY updated_at ASC`,
		model.JobStatusInProgress, cutoff)
	if err != nil {
		return nil, fmt.Errorf("listing stale jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []*model.TranslationJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stale job rows: %w", err)
	}
	return jobs, nil
}

func marshalJobFields(job *model.TranslationJob) (languages, progress, chunks, translated, fieldMeta, fieldResults []byte, err error) {
	if languages, err = json.Marshal(job.Languages); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("encoding job languages: %w", err)
	}
	if progress, err = json.Marshal(job.Progress); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("encoding job progress: %w", err)
	}
	if job.Chunks == nil {
		chunks = []byte("[]")
	} else if chunks, err = json.Marshal(job.Chunks); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("encoding job chunks: %w", err)
	}
	if job.Translated == nil {
		translated = []byte("{}")
	} else if translated, err = json.Marshal(job.Translated); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("encoding job chunk results: %w", err)
	}
	if job.FieldMeta == nil {
		fieldMeta = []byte("{}")
	} else if fieldMeta, err = json.Marshal(job.FieldMeta); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("encoding job field meta: %w", err)
	}
	if job.FieldResults == nil {
		fieldResults = []byte("{}")
	} else if fieldResults, err = json.Marshal(job.FieldResults); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("encoding job field results: %w", err)
	}
	return languages, progress, chunks, translated, fieldMeta, fieldResults, nil
}

func scanJob(row interface{ Scan(...any) error }) (*model.TranslationJob, error) {
	job := &model.TranslationJob{}
	var languages, progress, chunks, translated, fieldMeta, fieldResults []byte
	err := row.Scan(&job.ID, &job.SourceID, &languages, &job.Status, &progress,
		&chunks, &translated, &fieldMeta, &fieldResults, &job.ResultsLang, &job.CreatedAt, &job.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning job row: %w", err)
	}

	if err := json.Unmarshal(languages, &job.Languages); err != nil {
		return nil, fmt.Errorf("decoding job languages: %w", err)
	}
	if err := json.Unmarshal(progress, &job.Progress); err != nil {
		return nil, fmt.Errorf("decoding job progress: %w", err)
	}
	if err := json.Unmarshal(chunks, &job.Chunks); err != nil {
		return nil, fmt.Errorf("decoding job chunks: %w", err)
	}
	if err := json.Unmarshal(translated, &job.Translated); err != nil {
		return nil, fmt.Errorf("decoding job chunk results: %w", err)
	}
	if err := json.Unmarshal(fieldMeta, &job.FieldMeta); err != nil {
		return nil, fmt.Errorf("decoding job field meta: %w", err)
	}
	if err := json.Unmarshal(fieldResults, &job.FieldResults); err != nil {
		return nil, fmt.Errorf("decoding job field results: %w", err)
	}
	return job, nil
}
