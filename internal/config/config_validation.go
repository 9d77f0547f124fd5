// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"
)

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	switch cfg.App.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidEnvironment, cfg.App.Environment)
	}

	switch cfg.Storage.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStorageConfigs, cfg.Storage.DB.Driver)
	}

	if strings.TrimSpace(cfg.Auth.TokenHeaderName) == "" {
		return ErrInvalidAuthConfigs
	}

	if cfg.Audit.LoggerName == "" || !strings.HasPrefix(cfg.Audit.APIPrefix, "/") {
		return ErrInvalidAuditConfigs
	}

	return nil
}
