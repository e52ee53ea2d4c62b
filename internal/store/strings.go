// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/olegiv/otrans-go/internal/model"
)

// StringStore provides access to the UI string catalog. All reads go straight
// to SQL; no caching layer sits in front of this store. Stale cached string
// translations were a recurring source of wrong completeness reports, so the
// scanner depends on these direct lookups.
type StringStore struct {
	db *sql.DB
}

// NewStringStore creates a string store backed by the given database.
func NewStringStore(db *sql.DB) *StringStore {
	return &StringStore{db: db}
}

// Registered returns all registered UI strings ordered by group and name.
func (s *StringStore) Registered(ctx context.Context) ([]model.UIString, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, source, grp, multiline FROM ui_strings ORDER BY grp, name`)
	if err != nil {
		return nil, fmt.Errorf("listing registered strings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []model.UIString
	for rows.Next() {
		var str model.UIString
		var multiline int64
		if err := rows.Scan(&str.Name, &str.Source, &str.Group, &multiline); err != nil {
			return nil, fmt.Errorf("scanning string row: %w", err)
		}
		str.Multiline = multiline == 1
		result = append(result, str)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating string rows: %w", err)
	}
	return result, nil
}

// Register inserts or updates a registered UI string.
func (s *StringStore) Register(ctx context.Context, str model.UIString) error {
	multiline := int64(0)
	if str.Multiline {
		multiline = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ui_strings (name, source, grp, multiline) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET source = excluded.source, grp = excluded.grp, multiline = excluded.multiline`,
		str.Name, str.Source, str.Group, multiline)
	if err != nil {
		return fmt.Errorf("registering string %q: %w", str.Name, err)
	}
	return nil
}

// Translation returns the stored translation of a source phrase for one
// language. Missing rows return ErrNotFound.
func (s *StringStore) Translation(ctx context.Context, lang, source string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM string_translations WHERE lang = ? AND source = ?`,
		lang, source).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("loading string translation: %w", err)
	}
	return value, nil
}

// SetTranslation writes the translation of a source phrase for one language.
func (s *StringStore) SetTranslation(ctx context.Context, lang, source, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO string_translations (lang, source, value) VALUES (?, ?, ?)
		ON CONFLICT(lang, source) DO UPDATE SET value = excluded.value`,
		lang, source, value)
	if err != nil {
		return fmt.Errorf("setting string translation: %w", err)
	}
	return nil
}

// RawSources returns every distinct source phrase that appears in any
// per-language translation table, registered or not. Recovered rows let the
// scanner report strings whose registration was lost.
func (s *StringStore) RawSources(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT source FROM string_translations ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("listing raw string sources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sources []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, fmt.Errorf("scanning raw source row: %w", err)
		}
		sources = append(sources, source)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating raw source rows: %w", err)
	}
	return sources, nil
}
