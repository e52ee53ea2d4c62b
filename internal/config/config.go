// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/otrans-go/internal/model"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"OTRANS_DB_PATH" envDefault:"./data/otrans.db"`
	ServerHost string `env:"OTRANS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"OTRANS_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"OTRANS_ENV" envDefault:"development"`
	LogLevel   string `env:"OTRANS_LOG_LEVEL" envDefault:"info"`

	// Machine-translation provider
	MTAPIKey  string  `env:"OTRANS_MT_API_KEY"`
	MTBaseURL string  `env:"OTRANS_MT_BASE_URL" envDefault:"https://translation.googleapis.com/language/translate/v2"`
	MTRate    float64 `env:"OTRANS_MT_RATE"` // requests per second, 0 = unlimited

	// LLM post-editing provider
	LLMEndpoint string `env:"OTRANS_LLM_ENDPOINT"`
	LLMAPIKey   string `env:"OTRANS_LLM_API_KEY"`
	LLMModel    string `env:"OTRANS_LLM_MODEL"`
	LLMProvider string `env:"OTRANS_LLM_PROVIDER" envDefault:"openai"` // openai, anthropic, gemini, openrouter, custom

	// Pipeline behavior
	DefaultStatus string `env:"OTRANS_DEFAULT_STATUS" envDefault:"draft"` // status for created translations
	ChunkSize     int    `env:"OTRANS_CHUNK_SIZE" envDefault:"4000"`

	// Cache configuration
	RedisURL    string `env:"OTRANS_REDIS_URL"` // Optional Redis URL for distributed caching
	CachePrefix string `env:"OTRANS_CACHE_PREFIX" envDefault:"otrans:"`
	CacheTTL    int    `env:"OTRANS_CACHE_TTL" envDefault:"600"` // seconds

	// In-memory log rings
	EventLogSize int `env:"OTRANS_EVENT_LOG_SIZE" envDefault:"500"`
	UsageLogSize int `env:"OTRANS_USAGE_LOG_SIZE" envDefault:"200"`

	// Scheduler
	StaleJobCutoff int `env:"OTRANS_STALE_JOB_MINUTES" envDefault:"30"` // minutes before an in_progress job counts as stale

	// Seeding configuration
	DoSeed bool `env:"OTRANS_DO_SEED" envDefault:"false"` // seed the common language set on first run
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// CacheTTLDuration returns the cache TTL as a duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// StaleJobCutoffDuration returns the stale-job threshold as a duration.
func (c Config) StaleJobCutoffDuration() time.Duration {
	return time.Duration(c.StaleJobCutoff) * time.Minute
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	switch cfg.DefaultStatus {
	case model.StatusDraft, model.StatusPending, model.StatusPublished:
	default:
		return nil, fmt.Errorf("OTRANS_DEFAULT_STATUS must be draft, pending or published, got %q", cfg.DefaultStatus)
	}
	if cfg.ChunkSize < 0 {
		return nil, fmt.Errorf("OTRANS_CHUNK_SIZE must not be negative")
	}

	return cfg, nil
}
