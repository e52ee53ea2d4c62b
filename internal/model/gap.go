// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// TranslationGap is a source item lacking siblings in one or more active
// target languages. It is derived per scan, never stored.
type TranslationGap struct {
	SourceID         int64    `json:"source_id"`
	Title            string   `json:"title"`
	Type             string   `json:"type"`
	Status           string   `json:"status"`
	Lang             string   `json:"lang"`
	MissingLanguages []string `json:"missing_languages"`
	ContentLength    int      `json:"content_length"`
	EstimatedChunks  int      `json:"estimated_chunks"`
}

// GapSummary aggregates gap counts from a scan.
type GapSummary struct {
	TotalItems  int            `json:"total_items"`
	TotalGaps   int            `json:"total_gaps"`
	ByLanguage  map[string]int `json:"by_language"`
	ByType      map[string]int `json:"by_type"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// ExistingTranslation describes a sibling item resolved back to its source.
type ExistingTranslation struct {
	ID         int64     `json:"id"`
	SourceID   int64     `json:"source_id"`
	Title      string    `json:"title"`
	Type       string    `json:"type"`
	Lang       string    `json:"lang"`
	Status     string    `json:"status"`
	ModifiedAt time.Time `json:"modified_at"`
}

// PendingTranslation is a draft created by the batch translator that still
// needs machine translation.
type PendingTranslation struct {
	ID        int64     `json:"id"`
	SourceID  int64     `json:"source_id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Lang      string    `json:"lang"`
	CreatedAt time.Time `json:"created_at"`
}
