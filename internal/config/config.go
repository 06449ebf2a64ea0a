// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alina Demidova

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for
// go-stock-keeper. It aggregates all sub-configurations and is populated by
// merging values from environment variables, command-line flags, and an
// optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings such as the client log file path
	// and the application version.
	App App `envPrefix:"APP_"`

	// Storage holds configuration for the local on-device persistence layer.
	Storage Storage `envPrefix:"STORAGE_"`

	// Remote holds the remote CRUD backend address, timeouts, and the
	// connectivity probe settings.
	Remote Remote `envPrefix:"REMOTE_"`

	// Workers holds configuration for background worker processes (periodic
	// sync, pending-count polling).
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// LogPath is the client log file location. When empty the log is written
	// next to the executable.
	// Env: APP_LOG_PATH
	LogPath string `env:"LOG_PATH"`

	// Version is the semantic version string of the running application
	// (e.g. "1.2.3").
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Storage groups the configuration for the local persistence backend.
type Storage struct {
	// DB holds the local SQLite database settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the local SQLite cache database.
type DB struct {
	// DSN is the SQLite file path used for the local entity cache and the
	// pending operation log (e.g. "stock-keeper.db").
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Remote holds settings for the hosted CRUD backend and the reachability
// probe that drives the connectivity monitor.
type Remote struct {
	// BaseURL is the HTTP base URL of the remote store
	// (e.g. "https://backend.example.com").
	// Env: REMOTE_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// RequestTimeout bounds every outbound remote call. A stuck call must
	// not hold the replay single-flight guard indefinitely.
	// Env: REMOTE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// ProbeAddress is the host:port the connectivity monitor dials to decide
	// online/offline. Defaults to the BaseURL host when empty.
	// Env: REMOTE_PROBE_ADDRESS
	ProbeAddress string `env:"PROBE_ADDRESS"`

	// ProbeInterval is how often the reachability probe runs.
	// Env: REMOTE_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`
}

// Workers holds configuration for background worker processes.
type Workers struct {
	// SyncInterval defines how often the periodic sync job runs.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// PendingPollInterval defines how often the pending-count poller reads
	// the operation queue.
	// Env: WORKERS_PENDING_POLL_INTERVAL
	PendingPollInterval time.Duration `env:"PENDING_POLL_INTERVAL"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (last source wins for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
