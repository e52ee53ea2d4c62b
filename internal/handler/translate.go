// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type translateRequest struct {
	Lang    string `json:"lang"`
	Improve *bool  `json:"improve,omitempty"` // LLM post-editing, on unless disabled
}

// TranslatePost translates one item into one target language.
func (h *Handler) TranslatePost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid item id")
		return
	}

	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Lang == "" {
		writeBadRequest(w, "lang is required")
		return
	}

	improve := req.Improve == nil || *req.Improve
	translatedID, err := h.engine.TranslatePost(r.Context(), id, req.Lang, improve)
	if err != nil {
		h.logger.Error("translate request failed", "item", id, "lang", req.Lang, "error", err)
		writePipelineError(w, err)
		return
	}

	writeSuccess(w, map[string]any{
		"source_id":     id,
		"lang":          req.Lang,
		"translated_id": translatedID,
	})
}

type translateAllRequest struct {
	Languages []string `json:"languages"`
}

// TranslateAll translates one item into several languages under a job.
// An empty language list means all active languages.
func (h *Handler) TranslateAll(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid item id")
		return
	}

	var req translateAllRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadRequest(w, "invalid request body")
			return
		}
	}

	result, err := h.engine.TranslateAllLanguages(r.Context(), id, req.Languages)
	if err != nil && result == nil {
		h.logger.Error("multi-language translation failed", "item", id, "error", err)
		writePipelineError(w, err)
		return
	}
	// Partial failure still returns the collected result.
	writeSuccess(w, result)
}

// Retranslate re-runs translation for an existing translated item from its
// default-language source.
func (h *Handler) Retranslate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid item id")
		return
	}

	translatedID, err := h.engine.RetranslatePost(r.Context(), id)
	if err != nil {
		h.logger.Error("retranslate request failed", "item", id, "error", err)
		writePipelineError(w, err)
		return
	}

	writeSuccess(w, map[string]any{
		"item_id":       id,
		"translated_id": translatedID,
	})
}

type translateTextRequest struct {
	Text   string `json:"text"`
	Target string `json:"target"`
	Source string `json:"source,omitempty"`
}

// TranslateText translates free-standing text without persisting anything.
func (h *Handler) TranslateText(w http.ResponseWriter, r *http.Request) {
	var req translateTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Text == "" || req.Target == "" {
		writeBadRequest(w, "text and target are required")
		return
	}

	translated, err := h.engine.TranslateText(r.Context(), req.Text, req.Target, req.Source)
	if err != nil {
		h.logger.Error("text translation failed", "target", req.Target, "error", err)
		writePipelineError(w, err)
		return
	}

	writeSuccess(w, map[string]any{
		"target":     req.Target,
		"translated": translated,
	})
}
