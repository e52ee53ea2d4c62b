// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/otrans-go/internal/model"
	"github.com/olegiv/otrans-go/internal/store"
	"github.com/olegiv/otrans-go/internal/testutil"
)

func TestSeedPopulatesEmptyTable(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()

	require.NoError(t, store.Seed(ctx, db, true))

	languages := store.NewLanguageStore(db)
	def, err := languages.Default(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.CommonLanguages[0].Code, def.Code)

	// Only the default starts active; targets are enabled by the operator.
	active, err := languages.Active(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestSeedSkipsNonEmptyTable(t *testing.T) {
	db := testutil.TestDB(t)
	languages := testutil.SeedLanguages(t, db)
	ctx := context.Background()

	require.NoError(t, store.Seed(ctx, db, true))

	active, err := languages.Active(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1, "seed must not run on a non-empty table")
}

func TestSeedDisabled(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()

	require.NoError(t, store.Seed(ctx, db, false))

	languages := store.NewLanguageStore(db)
	active, err := languages.Active(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}
