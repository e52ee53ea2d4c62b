// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/olegiv/otrans-go/internal/model"
	"github.com/olegiv/otrans-go/internal/store"
)

// themeStrings are the phrases registered by the built-in theme. They are
// the second discovery source for the string catalog, after explicitly
// registered strings and before rows recovered from the translation tables.
var themeStrings = []model.UIString{
	{Name: "read_more", Source: "Read more", Group: "theme"},
	{Name: "search_placeholder", Source: "Search…", Group: "theme"},
	{Name: "related_articles", Source: "Related articles", Group: "theme"},
	{Name: "all_courses", Source: "All courses", Group: "theme"},
	{Name: "back_to_top", Source: "Back to top", Group: "theme"},
}

// StringCatalog reports the translation completeness of every known UI
// string. Strings are deduplicated by exact source text across three
// discovery sources, first occurrence winning: the registered-string table,
// the built-in theme set, and raw rows recovered from the per-language
// translation tables. Lookups go straight to the string store, which never
// sits behind a cache: a stale cached value must not mark a string complete.
func (s *Scanner) StringCatalog(ctx context.Context) ([]model.UIStringStatus, error) {
	defaultLang, targets, err := s.targetLanguages(ctx)
	if err != nil {
		return nil, err
	}

	registered, err := s.strings.Registered(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading registered strings: %w", err)
	}
	raw, err := s.strings.RawSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading raw string sources: %w", err)
	}

	seen := make(map[string]bool)
	var catalog []model.UIString
	add := func(str model.UIString) {
		if seen[str.Source] {
			return
		}
		seen[str.Source] = true
		catalog = append(catalog, str)
	}
	for _, str := range registered {
		add(str)
	}
	for _, str := range themeStrings {
		add(str)
	}
	for _, source := range raw {
		add(model.UIString{Name: source, Source: source, Group: "recovered"})
	}

	var result []model.UIStringStatus
	for _, str := range catalog {
		if isDateFormatString(str.Source) {
			s.logger.Debug("skipping date-format string", "source", str.Source, "lang", defaultLang)
			continue
		}

		status := model.UIStringStatus{
			UIString:     str,
			Translations: make(map[string]string, len(targets)),
			Complete:     true,
		}
		for _, target := range targets {
			value, err := s.strings.Translation(ctx, target, str.Source)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("looking up %q in %s: %w", str.Source, target, err)
			}
			status.Translations[target] = value
			if value == "" || value == str.Source {
				status.Complete = false
			}
		}
		result = append(result, status)
	}
	return result, nil
}

// dateFormatChars are the format letters and separators a date/time format
// string may consist of.
const dateFormatChars = "dDjlNSwzWFmMntLoYyaABgGhHisvueIOPTZcrU -/.,:;()[]0123456789"

// commonWords voids the date-format classification: a string containing any
// of them is treated as a real phrase no matter what it looks like.
var commonWords = []string{
	"the", "and", "for", "are", "not", "you", "all", "new", "more",
	"with", "from", "this", "that", "have", "will", "your", "date",
	"time", "day", "week", "month", "year", "read", "view", "save",
	"edit", "show", "search", "back", "next", "page", "home",
}

// isDateFormatString classifies short strings that look like date/time
// format codes so they are not offered for translation. The checks run in
// order: length above 50 never classifies; any common dictionary word voids
// the classification; otherwise a string composed only of known format
// letters and separators is treated as a format code. The ordering is
// deliberate and can misclassify very short legitimate phrases.
func isDateFormatString(s string) bool {
	if len(s) > 50 {
		return false
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}

	lower := strings.ToLower(trimmed)
	for _, word := range commonWords {
		if containsWord(lower, word) {
			return false
		}
	}

	for _, r := range trimmed {
		if !strings.ContainsRune(dateFormatChars, r) {
			return false
		}
	}
	return true
}

// containsWord reports whether text contains word as a whole token.
func containsWord(text, word string) bool {
	for _, token := range strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z')
	}) {
		if token == word {
			return true
		}
	}
	return false
}
