// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package translate contains the machine-translation and LLM provider
// adapters used by the translation engine.
package translate

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by both adapters.
var (
	// ErrNotConfigured is returned when no API credential is set.
	// It is always fatal to the operation and never retried.
	ErrNotConfigured = errors.New("translate: provider not configured")

	// ErrInvalidResponse is returned when a success-shaped response lacks
	// the expected translated-text field. It is never treated as an empty
	// translation.
	ErrInvalidResponse = errors.New("translate: invalid provider response")
)

// RequestError wraps a transport-level failure (DNS, TLS, timeout).
type RequestError struct {
	Op  string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("translate: request failed during %s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// APIError is a non-2xx vendor response. Message aggregates every
// vendor-reported sub-error; Raw keeps the response body for diagnosis.
type APIError struct {
	Status  int
	Message string
	Raw     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("translate: api error (status %d): %s", e.Status, e.Message)
}
