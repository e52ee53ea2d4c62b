// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/olegiv/otrans-go/internal/store"
)

// GetJob returns the state of one translation job, including remaining work.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeBadRequest(w, "invalid job id")
		return
	}

	job, err := h.jobs.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeNotFound(w, "job not found")
		return
	}
	if err != nil {
		h.logger.Error("job lookup failed", "job", id, "error", err)
		writePipelineError(w, err)
		return
	}

	writeSuccess(w, map[string]any{
		"job":       job,
		"remaining": job.RemainingLanguages(),
	})
}

// ResumeJob re-enters a non-terminal job and runs its remaining languages.
func (h *Handler) ResumeJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeBadRequest(w, "invalid job id")
		return
	}

	result, err := h.engine.ResumeJob(r.Context(), id)
	if err != nil && result == nil {
		h.logger.Error("job resumption failed", "job", id, "error", err)
		writePipelineError(w, err)
		return
	}
	writeSuccess(w, result)
}
