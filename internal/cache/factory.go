// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"fmt"
	"time"
)

// Config selects and configures the cache backend.
type Config struct {
	// Type is "memory" or "redis".
	Type string

	// RedisURL and RedisPrefix apply to the redis backend only.
	RedisURL    string
	RedisPrefix string

	DefaultTTL time.Duration
}

// New creates a cache from the configuration. An empty type selects the
// in-memory backend.
func New(cfg Config) (Cacher, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemory(MemoryOptions{
			DefaultTTL:      cfg.DefaultTTL,
			CleanupInterval: time.Minute,
		}), nil
	case "redis":
		return NewRedis(RedisOptions{
			URL:        cfg.RedisURL,
			Prefix:     cfg.RedisPrefix,
			DefaultTTL: cfg.DefaultTTL,
		})
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}
