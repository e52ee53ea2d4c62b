// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import "net/http"

// EventLog returns the in-memory event log, newest first.
func (h *Handler) EventLog(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]any{
		"count":   h.events.Len(),
		"entries": h.events.Entries(),
	})
}

// UsageLog returns the API usage log and per-API call counters.
func (h *Handler) UsageLog(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]any{
		"counts":  h.usage.Counts(),
		"entries": h.usage.Entries(),
	})
}
