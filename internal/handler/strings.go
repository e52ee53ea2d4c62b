// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/olegiv/otrans-go/internal/model"
)

type registerStringRequest struct {
	Name      string `json:"name"`
	Source    string `json:"source"`
	Group     string `json:"group,omitempty"`
	Multiline bool   `json:"multiline,omitempty"`
}

// RegisterString adds a UI string to the registered catalog.
func (h *Handler) RegisterString(w http.ResponseWriter, r *http.Request) {
	var req registerStringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Name == "" || req.Source == "" {
		writeBadRequest(w, "name and source are required")
		return
	}

	str := model.UIString{
		Name:      req.Name,
		Source:    req.Source,
		Group:     req.Group,
		Multiline: req.Multiline,
	}
	if err := h.strings.Register(r.Context(), str); err != nil {
		h.logger.Error("string registration failed", "name", req.Name, "error", err)
		writePipelineError(w, err)
		return
	}
	writeCreated(w, map[string]any{"name": req.Name})
}

type stringTranslationRequest struct {
	Lang   string `json:"lang"`
	Source string `json:"source"`
	Value  string `json:"value"`
}

// SetStringTranslation stores the translation of one UI string.
func (h *Handler) SetStringTranslation(w http.ResponseWriter, r *http.Request) {
	var req stringTranslationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Lang == "" || req.Source == "" {
		writeBadRequest(w, "lang and source are required")
		return
	}

	if err := h.strings.SetTranslation(r.Context(), req.Lang, req.Source, req.Value); err != nil {
		h.logger.Error("string translation update failed", "lang", req.Lang, "error", err)
		writePipelineError(w, err)
		return
	}
	writeSuccess(w, map[string]any{"lang": req.Lang, "source": req.Source})
}
