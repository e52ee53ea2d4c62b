// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides the bounded in-memory event log and API usage
// counters, plus a slog handler that feeds the event log.
package logging

import (
	"sync"
	"time"
)

// Log levels
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// API types recorded in the usage log.
const (
	APITypeMachine = "machine_translation"
	APITypeLLM     = "llm"
)

// LogEntry is one immutable event log record.
type LogEntry struct {
	Time    time.Time         `json:"time"`
	Level   string            `json:"level"`
	Message string            `json:"message"`
	Context map[string]string `json:"context,omitempty"`
}

// UsageEntry is one immutable API usage record.
type UsageEntry struct {
	Time      time.Time         `json:"time"`
	APIType   string            `json:"api_type"`
	Operation string            `json:"operation"`
	Usage     map[string]string `json:"usage,omitempty"`
}

// EventRing is a bounded append-only event log. When full, the oldest entry
// is discarded silently.
type EventRing struct {
	mu      sync.RWMutex
	entries []LogEntry
	next    int
	full    bool
}

// NewEventRing creates an event ring holding at most capacity entries.
func NewEventRing(capacity int) *EventRing {
	if capacity <= 0 {
		capacity = 500
	}
	return &EventRing{entries: make([]LogEntry, capacity)}
}

// Append adds an entry, overwriting the oldest one when the ring is full.
func (r *EventRing) Append(e LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[r.next] = e
	r.next++
	if r.next == len(r.entries) {
		r.next = 0
		r.full = true
	}
}

// Entries returns a snapshot of the log, newest first.
func (r *EventRing) Entries() []LogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := r.next
	if r.full {
		count = len(r.entries)
	}
	result := make([]LogEntry, 0, count)
	for i := 0; i < count; i++ {
		idx := r.next - 1 - i
		if idx < 0 {
			idx += len(r.entries)
		}
		result = append(result, r.entries[idx])
	}
	return result
}

// Len returns the number of entries currently held.
func (r *EventRing) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.full {
		return len(r.entries)
	}
	return r.next
}

// UsageRing is a bounded append-only API usage log with per-API call counters.
// The counters are monotonic and survive ring overflow.
type UsageRing struct {
	mu      sync.RWMutex
	entries []UsageEntry
	next    int
	full    bool
	counts  map[string]int64
}

// NewUsageRing creates a usage ring holding at most capacity entries.
func NewUsageRing(capacity int) *UsageRing {
	if capacity <= 0 {
		capacity = 200
	}
	return &UsageRing{
		entries: make([]UsageEntry, capacity),
		counts:  make(map[string]int64),
	}
}

// Record adds a usage entry and bumps the API counter.
func (r *UsageRing) Record(e UsageEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[r.next] = e
	r.next++
	if r.next == len(r.entries) {
		r.next = 0
		r.full = true
	}
	r.counts[e.APIType]++
}

// Entries returns a snapshot of the usage log, newest first.
func (r *UsageRing) Entries() []UsageEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := r.next
	if r.full {
		count = len(r.entries)
	}
	result := make([]UsageEntry, 0, count)
	for i := 0; i < count; i++ {
		idx := r.next - 1 - i
		if idx < 0 {
			idx += len(r.entries)
		}
		result = append(result, r.entries[idx])
	}
	return result
}

// Counts returns a copy of the per-API call counters.
func (r *UsageRing) Counts() map[string]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int64, len(r.counts))
	for k, v := range r.counts {
		counts[k] = v
	}
	return counts
}
