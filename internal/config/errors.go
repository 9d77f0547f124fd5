package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidEnvironment indicates an unknown application environment.
	ErrInvalidEnvironment = errors.New("invalid app environment")
	// ErrInvalidStorageConfigs indicates an unsupported database driver.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidAuthConfigs indicates an empty token header name.
	ErrInvalidAuthConfigs = errors.New("invalid auth configuration")
	// ErrInvalidAuditConfigs indicates an empty logger name or an API prefix
	// that is not an absolute path.
	ErrInvalidAuditConfigs = errors.New("invalid audit configuration")
)
