// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/olegiv/otrans-go/internal/engine"
	"github.com/olegiv/otrans-go/internal/scanner"
)

type createDraftsRequest struct {
	Requests  []engine.DraftRequest `json:"requests,omitempty"`
	Types     []string              `json:"types,omitempty"`
	Languages []string              `json:"languages,omitempty"`
}

// CreateDrafts runs the batch draft creator. Explicit (source, languages)
// pairs take precedence; without them the current gaps are scanned, filtered
// by the requested types and languages.
func (h *Handler) CreateDrafts(w http.ResponseWriter, r *http.Request) {
	var req createDraftsRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadRequest(w, "invalid request body")
			return
		}
	}

	var report *engine.DraftReport
	var err error
	if len(req.Requests) > 0 {
		report, err = h.engine.CreateDrafts(r.Context(), req.Requests)
	} else {
		report, err = h.engine.CreateDraftsFromGaps(r.Context(), scanner.GapFilters{
			Types:     req.Types,
			Languages: req.Languages,
		})
	}
	if err != nil {
		h.logger.Error("draft creation failed", "error", err)
		writePipelineError(w, err)
		return
	}
	writeCreated(w, report)
}

// PendingDrafts lists drafts still waiting for translation.
func (h *Handler) PendingDrafts(w http.ResponseWriter, r *http.Request) {
	items, err := h.engine.PendingTranslations(r.Context())
	if err != nil {
		h.logger.Error("pending-draft listing failed", "error", err)
		writePipelineError(w, err)
		return
	}
	writeSuccess(w, items)
}
