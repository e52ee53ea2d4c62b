// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/olegiv/otrans-go/internal/model"
)

// Seed populates an empty languages table with the common language set.
// The first entry becomes the active default; the rest start inactive and
// are enabled by the operator as translation targets. Seeding is skipped
// when disabled or when languages already exist.
func Seed(ctx context.Context, db *sql.DB, enabled bool) error {
	if !enabled {
		return nil
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM languages`).Scan(&count); err != nil {
		return fmt.Errorf("counting languages: %w", err)
	}
	if count > 0 {
		return nil
	}

	languages := NewLanguageStore(db)
	for i, l := range model.CommonLanguages {
		lang := &model.Language{
			Code:       l.Code,
			Name:       l.Name,
			NativeName: l.NativeName,
			Direction:  l.Direction,
			Position:   i,
			IsDefault:  i == 0,
			IsActive:   i == 0,
		}
		if _, err := languages.Create(ctx, lang); err != nil {
			return fmt.Errorf("seeding language %q: %w", l.Code, err)
		}
	}

	slog.Info("seeded language table", "languages", len(model.CommonLanguages))
	return nil
}
