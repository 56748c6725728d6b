package config

import "fmt"

// Validate checks a loaded Config for the handful of fields that must be
// set for the client to do anything useful. Struct-tag validation
// (go-playground/validator, as the teacher uses server-side) would be
// overkill for this few fields, so validation is hand-written here; see
// DESIGN.md for why.
func Validate(cfg *Config) error {
	if cfg.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	switch cfg.Logging.Level {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("logging.level must be one of DEBUG, INFO, WARN, ERROR, got %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", cfg.Logging.Format)
	}
	if cfg.Compound.MaxReadWriteOps <= 0 {
		return fmt.Errorf("compound.max_read_write_ops must be positive")
	}
	if cfg.Compound.MaxOtherOps <= 0 {
		return fmt.Errorf("compound.max_other_ops must be positive")
	}
	if cfg.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retry.max_attempts must be positive")
	}
	return nil
}
