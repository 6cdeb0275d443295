// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory swing queue feeding the workers.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of leaderboard workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// KeepAliveIntervalSec sets how often stream connections emit a
	// keep-alive comment to defeat intermediary idle timeouts.
	KeepAliveIntervalSec int `koanf:"keepalive_interval_sec"`

	// StreamBufferSize bounds the per-connection delivery channel; a
	// viewer slower than this buffer drops events instead of blocking
	// the publisher.
	StreamBufferSize int `koanf:"stream_buffer_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		QueueSize:            10_000,
		WorkerCount:          runtime.NumCPU() * 2,
		DedupeSize:           50_000,
		KeepAliveIntervalSec: 20,
		StreamBufferSize:     16,
		MaxLeaderboardLimit:  100,
	}
}
