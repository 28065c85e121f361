// SPDX-License-Identifier: Apache-2.0

package config

import "strings"

// validate checks that the final merged [StructuredConfig] satisfies the
// invariants that can be verified without knowing which binary is starting.
// Startup-specific requirements (a DSN for the server, a sign key, a server
// address for the client) are enforced where the value is first used.
//
// Returns nil if the configuration is valid, or a descriptive error
// otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Retention.Daily < 0 || cfg.Retention.Weekly < 0 ||
		cfg.Retention.Monthly < 0 || cfg.Retention.Yearly < 0 {
		return ErrInvalidRetentionConfigs
	}

	if cfg.App.AccessTokenDuration < 0 || cfg.App.RefreshTokenDuration < 0 ||
		cfg.App.RememberMeDuration < 0 || cfg.App.LoginSessionTTL < 0 {
		return ErrInvalidAppConfigs
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Workers.SyncInterval == 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
