// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

// Package config loads and validates the Fleetglass configuration.
//
// Configuration is layered with Koanf v2 (highest priority wins):
//  1. Environment variables (SERVER_PORT, DUCKDB_PATH, NATS_URL, ...)
//  2. Optional YAML file (config.yaml, or CONFIG_PATH)
//  3. Built-in defaults
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration tree.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Tracking  TrackingConfig  `koanf:"tracking"`
	NATS      NATSConfig      `koanf:"nats"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	Websocket WebsocketConfig `koanf:"websocket"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file. Empty string opens an in-memory
	// database (used by tests).
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	// Threads is the DuckDB thread count; 0 means runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// TrackingConfig holds telemetry ingestion and history settings.
type TrackingConfig struct {
	// DefaultHistoryLimit is the number of points returned by the history
	// endpoint when no limit parameter is given.
	DefaultHistoryLimit int `koanf:"default_history_limit"`
	// MaxHistoryLimit caps the limit parameter of the history endpoint.
	MaxHistoryLimit int `koanf:"max_history_limit"`
}

// NATSConfig holds the optional telemetry event publisher settings.
// Publishing is fire-and-forget core NATS; there is no JetStream durability
// because missed updates are not replayed to observers.
type NATSConfig struct {
	Enabled       bool          `koanf:"enabled"`
	URL           string        `koanf:"url"`
	SubjectPrefix string        `koanf:"subject_prefix"`
	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// WebsocketConfig holds tunables for observer connections.
type WebsocketConfig struct {
	// SendBuffer is the per-client outbound message buffer. A client whose
	// buffer fills is disconnected rather than allowed to stall broadcasts.
	SendBuffer int `koanf:"send_buffer"`
	// InboundPerSecond rate-limits control messages read from one client.
	InboundPerSecond int `koanf:"inbound_per_second"`
}

// Validate checks the configuration for values that would prevent startup.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateNATS(); err != nil {
		return err
	}
	if err := c.validateTracking(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required when nats.enabled is true")
	}
	if c.NATS.SubjectPrefix == "" {
		return fmt.Errorf("nats.subject_prefix is required when nats.enabled is true")
	}
	return nil
}

func (c *Config) validateTracking() error {
	if c.Tracking.DefaultHistoryLimit < 1 {
		return fmt.Errorf("tracking.default_history_limit must be at least 1, got %d", c.Tracking.DefaultHistoryLimit)
	}
	if c.Tracking.MaxHistoryLimit < c.Tracking.DefaultHistoryLimit {
		return fmt.Errorf("tracking.max_history_limit (%d) must not be below tracking.default_history_limit (%d)",
			c.Tracking.MaxHistoryLimit, c.Tracking.DefaultHistoryLimit)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q must be json or console", c.Logging.Format)
	}
	return nil
}
