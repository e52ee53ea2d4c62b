// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scanner walks the content store to find missing translations and
// reports on the state of existing ones.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/olegiv/otrans-go/internal/content"
	"github.com/olegiv/otrans-go/internal/model"
	"github.com/olegiv/otrans-go/internal/store"
)

// ContentSource is the slice of the content store the scanner reads.
type ContentSource interface {
	Get(ctx context.Context, id int64) (*model.ContentItem, error)
	List(ctx context.Context, f store.ListFilter) ([]*model.ContentItem, error)
	Links(ctx context.Context, id int64) (model.TranslationLinks, error)
}

// LanguageSource provides the language configuration.
type LanguageSource interface {
	Active(ctx context.Context) ([]*model.Language, error)
	Default(ctx context.Context) (*model.Language, error)
}

// StringSource provides direct, uncached access to the string catalog.
type StringSource interface {
	Registered(ctx context.Context) ([]model.UIString, error)
	Translation(ctx context.Context, lang, source string) (string, error)
	RawSources(ctx context.Context) ([]string, error)
}

// Scanner computes translation gaps and reports.
type Scanner struct {
	contents  ContentSource
	languages LanguageSource
	strings   StringSource
	chunkSize int
	logger    *slog.Logger
}

// New creates a scanner. chunkSize bounds the chunk estimate in gap reports;
// zero selects the default.
func New(contents ContentSource, languages LanguageSource, strs StringSource, chunkSize int, logger *slog.Logger) *Scanner {
	if chunkSize <= 0 {
		chunkSize = content.DefaultChunkSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		contents:  contents,
		languages: languages,
		strings:   strs,
		chunkSize: chunkSize,
		logger:    logger,
	}
}

// GapFilters narrows FindGaps results. Empty fields mean "all".
type GapFilters struct {
	Types     []string
	Languages []string
}

// FindGaps returns, per published source-language item, the set of active
// target languages with no sibling. The optional language filter is applied
// by intersection after the missing set is computed from the full active
// set, so gap metadata always reflects the unfiltered item.
func (s *Scanner) FindGaps(ctx context.Context, filters GapFilters) ([]model.TranslationGap, error) {
	defaultLang, targets, err := s.targetLanguages(ctx)
	if err != nil {
		return nil, err
	}

	types := filters.Types
	if len(types) == 0 {
		types = model.SupportedTypes
	}

	requested := make(map[string]bool, len(filters.Languages))
	for _, lang := range filters.Languages {
		requested[lang] = true
	}

	var gaps []model.TranslationGap
	for _, contentType := range types {
		items, err := s.contents.List(ctx, store.ListFilter{
			Type:   contentType,
			Status: model.StatusPublished,
		})
		if err != nil {
			return nil, fmt.Errorf("listing %s items: %w", contentType, err)
		}

		for _, item := range items {
			if item.Lang != "" && item.Lang != defaultLang {
				continue
			}

			links, err := s.contents.Links(ctx, item.ID)
			if err != nil {
				return nil, fmt.Errorf("loading links of item %d: %w", item.ID, err)
			}

			var missing []string
			for _, target := range targets {
				if _, ok := links[target]; !ok {
					missing = append(missing, target)
				}
			}
			if len(missing) == 0 {
				continue
			}

			// Metadata comes from the unfiltered missing set's item.
			gap := model.TranslationGap{
				SourceID:        item.ID,
				Title:           item.Title,
				Type:            item.Type,
				Status:          item.Status,
				Lang:            defaultLang,
				ContentLength:   len(item.Body),
				EstimatedChunks: content.EstimateChunks(len(item.Body), s.chunkSize),
			}

			if len(requested) > 0 {
				var filtered []string
				for _, lang := range missing {
					if requested[lang] {
						filtered = append(filtered, lang)
					}
				}
				missing = filtered
			}
			if len(missing) == 0 {
				continue
			}
			gap.MissingLanguages = missing
			gaps = append(gaps, gap)
		}
	}

	return gaps, nil
}

// Summary aggregates gap counts per language and per content type.
func (s *Scanner) Summary(ctx context.Context) (*model.GapSummary, error) {
	gaps, err := s.FindGaps(ctx, GapFilters{})
	if err != nil {
		return nil, err
	}

	summary := &model.GapSummary{
		TotalItems:  len(gaps),
		ByLanguage:  make(map[string]int),
		ByType:      make(map[string]int),
		GeneratedAt: time.Now(),
	}
	for _, gap := range gaps {
		summary.ByType[gap.Type]++
		for _, lang := range gap.MissingLanguages {
			summary.ByLanguage[lang]++
			summary.TotalGaps++
		}
	}
	return summary, nil
}

// ExistingFilters narrows FindExistingTranslations results.
type ExistingFilters struct {
	Type   string
	Status string
}

// FindExistingTranslations lists sibling items in every active target
// language, resolved back to their source through the link table, sorted by
// modification time descending.
func (s *Scanner) FindExistingTranslations(ctx context.Context, filters ExistingFilters) ([]model.ExistingTranslation, error) {
	defaultLang, targets, err := s.targetLanguages(ctx)
	if err != nil {
		return nil, err
	}

	var result []model.ExistingTranslation
	for _, target := range targets {
		items, err := s.contents.List(ctx, store.ListFilter{
			Type:   filters.Type,
			Status: filters.Status,
			Lang:   target,
		})
		if err != nil {
			return nil, fmt.Errorf("listing %s translations: %w", target, err)
		}

		for _, item := range items {
			links, err := s.contents.Links(ctx, item.ID)
			if err != nil {
				return nil, fmt.Errorf("loading links of item %d: %w", item.ID, err)
			}
			sourceID, ok := links[defaultLang]
			if !ok {
				// Orphan translation with no source link; not reported.
				continue
			}
			result = append(result, model.ExistingTranslation{
				ID:         item.ID,
				SourceID:   sourceID,
				Title:      item.Title,
				Type:       item.Type,
				Lang:       item.Lang,
				Status:     item.Status,
				ModifiedAt: item.UpdatedAt,
			})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ModifiedAt.After(result[j].ModifiedAt)
	})
	return result, nil
}

// targetLanguages returns the default language code and the active target
// codes (active minus default).
func (s *Scanner) targetLanguages(ctx context.Context) (string, []string, error) {
	defaultLang, err := s.languages.Default(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("loading default language: %w", err)
	}
	active, err := s.languages.Active(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("loading active languages: %w", err)
	}

	var targets []string
	for _, lang := range active {
		if lang.Code != defaultLang.Code {
			targets = append(targets, lang.Code)
		}
	}
	return defaultLang.Code, targets, nil
}
