// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Content item statuses
const (
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusPublished = "published"
)

// Content item types
const (
	TypeArticle = "article"
	TypeCourse  = "course"
	TypeTool    = "tool"
)

// SupportedTypes lists all content types handled by the translation pipeline.
var SupportedTypes = []string{TypeArticle, TypeCourse, TypeTool}

// Metadata keys written by the batch translator on created drafts.
const (
	MetaNeedsTranslation = "_needs_translation"
	MetaSourceItem       = "_translation_source"
	MetaTranslatedAt     = "_translation_created_at"
)

// ContentItem is a single piece of content in one language.
// Items in different languages are linked through the translation link table.
type ContentItem struct {
	ID          int64         `json:"id"`
	Type        string        `json:"type"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Body        string        `json:"body"`
	Excerpt     string        `json:"excerpt"`
	Lang        string        `json:"lang"`
	Status      string        `json:"status"`
	AuthorID    int64         `json:"author_id"`
	ThumbnailID sql.NullInt64 `json:"thumbnail_id,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// IsPublished returns true if the item is published.
func (c *ContentItem) IsPublished() bool {
	return c.Status == StatusPublished
}

// IsDraft returns true if the item is a draft.
func (c *ContentItem) IsDraft() bool {
	return c.Status == StatusDraft
}

// TranslationLinks maps language code to the sibling item ID for one item.
// An item has at most one sibling per language code and links are symmetric:
// if A links to B under B's language, B links back to A under A's language.
type TranslationLinks map[string]int64

// Term is a taxonomy term attached to content items.
type Term struct {
	ID       int64  `json:"id"`
	Taxonomy string `json:"taxonomy"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
}

// TaxonomyLanguage is the taxonomy used internally for language assignment.
// The batch translator copies every taxonomy except this one to new drafts.
const TaxonomyLanguage = "language"
