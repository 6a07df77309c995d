package config

import (
	"fmt"
	"slices"
	"strings"
)

// MinSecretLength is the shortest accepted JWT secret.
const MinSecretLength = 16

// Validate checks the configuration for semantic errors.
func Validate(cfg Config) error {
	var errs []string

	if cfg.Server.Addr == "" {
		errs = append(errs, "server.addr is required")
	}
	if cfg.Storage.DBPath == "" {
		errs = append(errs, "storage.db_path is required")
	}
	if cfg.Storage.ReceiptsDir == "" {
		errs = append(errs, "storage.receipts_dir is required")
	}
	if cfg.Storage.MaxUploadBytes <= 0 {
		errs = append(errs, "storage.max_upload_bytes must be > 0")
	}
	if len(cfg.Auth.JWTSecret) < MinSecretLength {
		errs = append(errs, fmt.Sprintf("auth.jwt_secret must be at least %d characters", MinSecretLength))
	}
	if cfg.Auth.TokenTTL <= 0 {
		errs = append(errs, "auth.token_ttl must be > 0")
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(cfg.Log.Level)) {
		errs = append(errs, "log.level must be one of debug|info|warn|error")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
