// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"BRIDGE_DB_PATH" envDefault:"./data/bridge.db"`
	ServerHost string `env:"BRIDGE_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"BRIDGE_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"BRIDGE_ENV" envDefault:"development"`
	LogLevel   string `env:"BRIDGE_LOG_LEVEL" envDefault:"info"`

	// SiteURL is the public base URL of the site whose content is bridged.
	SiteURL string `env:"BRIDGE_SITE_URL" envDefault:"http://localhost:8080"`

	// UploadsDir is the base directory migrated files are stored under;
	// UploadsURL is the public URL that directory is served from. When
	// UploadsURL is empty it defaults to SiteURL + "/uploads".
	UploadsDir string `env:"BRIDGE_UPLOADS_DIR" envDefault:"./uploads"`
	UploadsURL string `env:"BRIDGE_UPLOADS_URL"`

	// ContentFormat selects how stored post bodies are post-processed for
	// listings: "html" (sanitize only) or "markdown" (render then sanitize).
	ContentFormat string `env:"BRIDGE_CONTENT_FORMAT" envDefault:"html"`

	// Rate limiting for the API surface, per client IP.
	RateLimitRPS   float64 `env:"BRIDGE_RATE_LIMIT_RPS" envDefault:"25"`
	RateLimitBurst int     `env:"BRIDGE_RATE_LIMIT_BURST" envDefault:"50"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	if cfg.UploadsURL == "" {
		cfg.UploadsURL = cfg.SiteURL + "/uploads"
	}
	cfg.UploadsURL = strings.TrimRight(cfg.UploadsURL, "/")

	if cfg.ContentFormat != "html" && cfg.ContentFormat != "markdown" {
		return nil, fmt.Errorf("BRIDGE_CONTENT_FORMAT must be html or markdown, got %q", cfg.ContentFormat)
	}

	return cfg, nil
}
