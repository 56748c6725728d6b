package config

import (
	"strings"
	"time"
)

// ApplyDefaults fills in any unspecified configuration fields with sensible
// defaults, following the teacher's zero-value-means-unset convention.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyCredentialsDefaults(&cfg.Credentials)
	applyCompoundDefaults(&cfg.Compound)
	applyRetryDefaults(&cfg.Retry)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ExportRoot == "" {
		cfg.ExportRoot = "/"
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}
}

func applyCredentialsDefaults(cfg *CredentialsConfig) {
	if cfg.MachineName == "" {
		cfg.MachineName = "tcnfs-client"
	}
}

// applyCompoundDefaults mirrors spec.md §4.3's default capacity: 10
// read/write ops per compound (the wire's biggest XDR payload), 64 of
// everything else (small fixed-size argument structs).
func applyCompoundDefaults(cfg *CompoundConfig) {
	if cfg.MaxReadWriteOps == 0 {
		cfg.MaxReadWriteOps = 10
	}
	if cfg.MaxOtherOps == 0 {
		cfg.MaxOtherOps = 64
	}
}

func applyRetryDefaults(cfg *RetryConfig) {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.InitialDelay == 0 {
		cfg.InitialDelay = 100 * time.Millisecond
	}
	if cfg.MaxDelay == 0 {
		cfg.MaxDelay = 5 * time.Second
	}
}

// DefaultConfig returns a Config with every field defaulted, used when no
// config file is found.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
