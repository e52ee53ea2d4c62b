// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// UIString is a registered short translatable phrase, tracked in the
// per-language string catalog separately from content items.
type UIString struct {
	Name      string `json:"name"`
	Source    string `json:"source"`
	Group     string `json:"group"`
	Multiline bool   `json:"multiline"`
}

// UIStringStatus is a UI string annotated with its per-language translations
// for the completeness report.
type UIStringStatus struct {
	UIString
	Translations map[string]string `json:"translations"` // lang -> value ("" when missing)
	Complete     bool              `json:"complete"`
}
