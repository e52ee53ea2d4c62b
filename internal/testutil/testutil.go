// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the translation service.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/olegiv/otrans-go/internal/model"
	"github.com/olegiv/otrans-go/internal/store"
)

// TestLogger creates a test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestDB creates a temporary test database with migrations applied.
// The database file lives in the test's temp dir and is removed with it.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "otrans-test.db")

	db, err := store.NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// SeedLanguages inserts a default English plus the given extra active
// language codes and returns the language store.
func SeedLanguages(t *testing.T, db *sql.DB, extra ...string) *store.LanguageStore {
	t.Helper()

	languages := store.NewLanguageStore(db)
	ctx := context.Background()

	if _, err := languages.Create(ctx, &model.Language{
		Code: "en", Name: "English", NativeName: "English",
		IsDefault: true, IsActive: true, Direction: model.DirectionLTR,
	}); err != nil {
		t.Fatalf("seeding default language: %v", err)
	}
	for i, code := range extra {
		if _, err := languages.Create(ctx, &model.Language{
			Code: code, Name: code, NativeName: code,
			IsActive: true, Direction: model.DirectionLTR, Position: i + 1,
		}); err != nil {
			t.Fatalf("seeding language %s: %v", code, err)
		}
	}
	return languages
}
