// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/otrans-go/internal/model"
)

const (
	keyActiveLanguages = "languages:active"
	keyDefaultLanguage = "languages:default"
)

// LanguageSource is the store surface the cached view reads through.
type LanguageSource interface {
	Active(ctx context.Context) ([]*model.Language, error)
	Default(ctx context.Context) (*model.Language, error)
}

// Languages is a read-through cached view of the language configuration.
// Language rows change rarely but are read on every scan and every request,
// so they are the one table worth fronting with a cache.
type Languages struct {
	cache Cacher
	store LanguageSource
	ttl   time.Duration
}

// NewLanguages creates a cached language view.
func NewLanguages(c Cacher, store LanguageSource, ttl time.Duration) *Languages {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Languages{cache: c, store: store, ttl: ttl}
}

// Active returns the active languages, cached.
func (l *Languages) Active(ctx context.Context) ([]*model.Language, error) {
	if data, err := l.cache.Get(ctx, keyActiveLanguages); err == nil {
		var langs []*model.Language
		if err := json.Unmarshal(data, &langs); err == nil {
			return langs, nil
		}
		// Corrupt entry; fall through to the store.
		_ = l.cache.Delete(ctx, keyActiveLanguages)
	} else if !errors.Is(err, ErrMiss) {
		return nil, fmt.Errorf("reading language cache: %w", err)
	}

	langs, err := l.store.Active(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(langs); err == nil {
		_ = l.cache.Set(ctx, keyActiveLanguages, data, l.ttl)
	}
	return langs, nil
}

// Default returns the default language, cached.
func (l *Languages) Default(ctx context.Context) (*model.Language, error) {
	if data, err := l.cache.Get(ctx, keyDefaultLanguage); err == nil {
		lang := &model.Language{}
		if err := json.Unmarshal(data, lang); err == nil {
			return lang, nil
		}
		_ = l.cache.Delete(ctx, keyDefaultLanguage)
	} else if !errors.Is(err, ErrMiss) {
		return nil, fmt.Errorf("reading language cache: %w", err)
	}

	lang, err := l.store.Default(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(lang); err == nil {
		_ = l.cache.Set(ctx, keyDefaultLanguage, data, l.ttl)
	}
	return lang, nil
}

// Invalidate drops the cached language configuration.
func (l *Languages) Invalidate(ctx context.Context) {
	_ = l.cache.Delete(ctx, keyActiveLanguages)
	_ = l.cache.Delete(ctx, keyDefaultLanguage)
}
