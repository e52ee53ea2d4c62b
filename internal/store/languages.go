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

// LanguageStore provides access to the languages table.
type LanguageStore struct {
	db *sql.DB
}

// NewLanguageStore creates a language store backed by the given database.
func NewLanguageStore(db *sql.DB) *LanguageStore {
	return &LanguageStore{db: db}
}

const languageColumns = `id, code, name, native_name, is_default, is_active, direction, position, created_at, updated_at`

func scanLanguage(row interface{ Scan(...any) error }) (*model.Language, error) {
	lang := &model.Language{}
	var isDefault, isActive int64
	err := row.Scan(&lang.ID, &lang.Code, &lang.Name, &lang.NativeName,
		&isDefault, &isActive, &lang.Direction, &lang.Position, &lang.CreatedAt, &lang.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning language row: %w", err)
	}
	lang.IsDefault = isDefault == 1
	lang.IsActive = isActive == 1
	return lang, nil
}

// Active returns all active languages ordered by position.
func (s *LanguageStore) Active(ctx context.Context) ([]*model.Language, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+languageColumns+` FROM languages WHERE is_active = 1 ORDER BY position, code`)
	if err != nil {
		return nil, fmt.Errorf("listing active languages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var langs []*model.Language
	for rows.Next() {
		lang, err := scanLanguage(rows)
		if err != nil {
			return nil, err
		}
		langs = append(langs, lang)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating language rows: %w", err)
	}
	return langs, nil
}

// Default returns the default language.
func (s *LanguageStore) Default(ctx context.Context) (*model.Language, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+languageColumns+` FROM languages WHERE is_default = 1 LIMIT 1`)
	return scanLanguage(row)
}

// ByCode returns a language by its ISO code.
func (s *LanguageStore) ByCode(ctx context.Context, code string) (*model.Language, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+languageColumns+` FROM languages WHERE code = ?`, code)
	return scanLanguage(row)
}

// Create inserts a language.
func (s *LanguageStore) Create(ctx context.Context, lang *model.Language) (int64, error) {
	isDefault, isActive := int64(0), int64(0)
	if lang.IsDefault {
		isDefault = 1
	}
	if lang.IsActive {
		isActive = 1
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO languages (code, name, native_name, is_default, is_active, direction, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		lang.Code, lang.Name, lang.NativeName, isDefault, isActive, lang.Direction, lang.Position)
	if err != nil {
		return 0, fmt.Errorf("creating language %q: %w", lang.Code, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading language id: %w", err)
	}
	lang.ID = id
	return id, nil
}
