// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scanner

import (
	"context"
	"testing"

	"github.com/olegiv/otrans-go/internal/model"
)

func TestIsDateFormatString(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Y-m-d", true},
		{"F j, Y", true},
		{"H:i:s", true},
		{"d/m/Y g:i a", true},
		{"Read more", false},       // common word voids the classification
		{"Search the site", false}, // ditto
		{"Bonjour!", false},        // letters outside the format set
		{"", false},
		{"   ", false},
		{"YYYY-MM-DD format used for all dates in the exported CSV file", false}, // over 50 chars
	}
	for _, tt := range tests {
		if got := isDateFormatString(tt.in); got != tt.want {
			t.Errorf("isDateFormatString(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStringCatalogDedupesBySource(t *testing.T) {
	strs := &fakeStrings{
		registered: []model.UIString{
			{Name: "cta_read_more", Source: "Read more", Group: "custom"},
		},
		raw: []string{"Read more", "Recovered phrase"},
		translations: map[string]map[string]string{
			"de": {"Read more": "Weiterlesen"},
		},
	}
	langs := &fakeLanguages{codes: []string{"en", "de"}}
	s := newTestScanner(&fakeContents{}, langs, strs)

	catalog, err := s.StringCatalog(context.Background())
	if err != nil {
		t.Fatalf("StringCatalog: %v", err)
	}

	seen := make(map[string]int)
	for _, status := range catalog {
		seen[status.Source]++
	}
	if seen["Read more"] != 1 {
		t.Errorf("duplicate entries for %q: %d", "Read more", seen["Read more"])
	}
	// The registered row wins over the theme and recovered rows.
	for _, status := range catalog {
		if status.Source == "Read more" && status.Group != "custom" {
			t.Errorf("group = %q, want registered row to win", status.Group)
		}
	}
	if seen["Recovered phrase"] != 1 {
		t.Error("raw source row missing from catalog")
	}
}

func TestStringCatalogCompleteness(t *testing.T) {
	strs := &fakeStrings{
		registered: []model.UIString{
			{Name: "done", Source: "Fully translated", Group: "custom"},
			{Name: "partial", Source: "Half translated", Group: "custom"},
			{Name: "copied", Source: "Copied verbatim", Group: "custom"},
		},
		translations: map[string]map[string]string{
			"de": {
				"Fully translated": "Vollständig übersetzt",
				"Half translated":  "Halb übersetzt",
				"Copied verbatim":  "Copied verbatim",
			},
			"fr": {
				"Fully translated": "Entièrement traduit",
			},
		},
	}
	langs := &fakeLanguages{codes: []string{"en", "de", "fr"}}
	s := newTestScanner(&fakeContents{}, langs, strs)

	catalog, err := s.StringCatalog(context.Background())
	if err != nil {
		t.Fatalf("StringCatalog: %v", err)
	}

	byName := make(map[string]model.UIStringStatus)
	for _, status := range catalog {
		byName[status.Name] = status
	}

	if !byName["done"].Complete {
		t.Error("fully translated string not marked complete")
	}
	if byName["partial"].Complete {
		t.Error("string missing a language marked complete")
	}
	// A translation equal to the source counts as untranslated.
	if byName["copied"].Complete {
		t.Error("verbatim copy marked complete")
	}
	if byName["done"].Translations["fr"] != "Entièrement traduit" {
		t.Errorf("translations = %v", byName["done"].Translations)
	}
}

func TestStringCatalogSkipsDateFormats(t *testing.T) {
	strs := &fakeStrings{
		registered: []model.UIString{
			{Name: "date_format", Source: "Y-m-d", Group: "custom"},
			{Name: "phrase", Source: "A real phrase", Group: "custom"},
		},
	}
	langs := &fakeLanguages{codes: []string{"en", "de"}}
	s := newTestScanner(&fakeContents{}, langs, strs)

	catalog, err := s.StringCatalog(context.Background())
	if err != nil {
		t.Fatalf("StringCatalog: %v", err)
	}
	for _, status := range catalog {
		if status.Source == "Y-m-d" {
			t.Error("date-format string offered for translation")
		}
	}
}
