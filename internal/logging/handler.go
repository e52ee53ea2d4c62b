// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"log/slog"
)

// RingHandler is a slog.Handler that wraps another handler and also appends
// records at or above a threshold level to an EventRing.
type RingHandler struct {
	inner slog.Handler
	ring  *EventRing
	level slog.Level
	attrs []slog.Attr
}

// NewRingHandler creates a RingHandler that records WARN and above.
func NewRingHandler(inner slog.Handler, ring *EventRing) *RingHandler {
	return &RingHandler{inner: inner, ring: ring, level: slog.LevelWarn}
}

// NewRingHandlerWithLevel creates a RingHandler with a custom threshold.
func NewRingHandlerWithLevel(inner slog.Handler, ring *EventRing, level slog.Level) *RingHandler {
	return &RingHandler{inner: inner, ring: ring, level: level}
}

// Enabled implements slog.Handler.
func (h *RingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *RingHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level >= h.level {
		h.ring.Append(LogEntry{
			Time:    r.Time,
			Level:   slogLevelToRingLevel(r.Level),
			Message: r.Message,
			Context: h.recordContext(r),
		})
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *RingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RingHandler{
		inner: h.inner.WithAttrs(attrs),
		ring:  h.ring,
		level: h.level,
		attrs: append(append([]slog.Attr(nil), h.attrs...), attrs...),
	}
}

// WithGroup implements slog.Handler.
func (h *RingHandler) WithGroup(name string) slog.Handler {
	return &RingHandler{
		inner: h.inner.WithGroup(name),
		ring:  h.ring,
		level: h.level,
		attrs: h.attrs,
	}
}

// recordContext collects handler and record attributes into a string map.
func (h *RingHandler) recordContext(r slog.Record) map[string]string {
	if len(h.attrs) == 0 && r.NumAttrs() == 0 {
		return nil
	}
	ctx := make(map[string]string, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		ctx[a.Key] = a.Value.String()
	}
	r.Attrs(func(a slog.Attr) bool {
		ctx[a.Key] = a.Value.String()
		return true
	})
	return ctx
}

func slogLevelToRingLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return LevelError
	case level >= slog.LevelWarn:
		return LevelWarning
	default:
		return LevelInfo
	}
}
