// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content extracts translatable text from content items, chunks long
// text for the translation providers and rebuilds HTML afterwards.
package content

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/otrans-go/internal/model"
)

// Fields holds the translatable fields of a content item.
type Fields struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Excerpt string `json:"excerpt"`
}

// ExtractTranslatable copies the translatable fields out of an item.
func ExtractTranslatable(item *model.ContentItem) Fields {
	return Fields{
		Title:   item.Title,
		Content: item.Body,
		Excerpt: item.Excerpt,
	}
}

var (
	bodyPolicy = bluemonday.UGCPolicy()
	textPolicy = bluemonday.StrictPolicy()
)

// CleanHTML decodes HTML entities and sanitizes markup for storage,
// keeping the usual user-generated-content tags.
func CleanHTML(s string) string {
	return bodyPolicy.Sanitize(html.UnescapeString(s))
}

// CleanText decodes HTML entities and strips all markup, for plain-text
// fields such as titles and excerpts.
func CleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}
