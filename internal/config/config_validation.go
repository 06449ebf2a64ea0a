// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alina Demidova

package config

import "strings"

// validate checks that the final merged [ClientConfig] satisfies all
// application invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a sentinel error otherwise.
func (cfg *ClientConfig) validate() error {
	// The local cache must survive process restart, so an in-memory SQLite
	// DSN is rejected.
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Remote.BaseURL == "" || cfg.Remote.ProbeAddress == "" {
		return ErrInvalidRemoteConfigs
	}

	return nil
}
