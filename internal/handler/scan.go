// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strings"

	"github.com/olegiv/otrans-go/internal/scanner"
)

// Gaps lists items missing translations. Comma-separated "types" and
// "languages" query parameters narrow the report.
func (h *Handler) Gaps(w http.ResponseWriter, r *http.Request) {
	filters := scanner.GapFilters{
		Types:     splitParam(r.URL.Query().Get("types")),
		Languages: splitParam(r.URL.Query().Get("languages")),
	}

	gaps, err := h.scanner.FindGaps(r.Context(), filters)
	if err != nil {
		h.logger.Error("gap scan failed", "error", err)
		writePipelineError(w, err)
		return
	}
	writeSuccess(w, gaps)
}

// GapSummary aggregates gap counts per language and content type.
func (h *Handler) GapSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.scanner.Summary(r.Context())
	if err != nil {
		h.logger.Error("gap summary failed", "error", err)
		writePipelineError(w, err)
		return
	}
	writeSuccess(w, summary)
}

// ExistingTranslations lists translated siblings resolved to their sources.
func (h *Handler) ExistingTranslations(w http.ResponseWriter, r *http.Request) {
	filters := scanner.ExistingFilters{
		Type:   r.URL.Query().Get("type"),
		Status: r.URL.Query().Get("status"),
	}

	existing, err := h.scanner.FindExistingTranslations(r.Context(), filters)
	if err != nil {
		h.logger.Error("existing-translation scan failed", "error", err)
		writePipelineError(w, err)
		return
	}
	writeSuccess(w, existing)
}

// StringCatalog reports the translation completeness of UI strings.
func (h *Handler) StringCatalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.scanner.StringCatalog(r.Context())
	if err != nil {
		h.logger.Error("string catalog failed", "error", err)
		writePipelineError(w, err)
		return
	}
	writeSuccess(w, catalog)
}

// splitParam splits a comma-separated query parameter, dropping empties.
func splitParam(s string) []string {
	if s == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
