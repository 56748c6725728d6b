// Package config loads the client's process-wide configuration: the server
// to dial, the export to mount under, the credentials to present, and the
// tuning knobs (compound sharding capacity, retry policy) the rest of the
// module reads at init time.
//
// Configuration sources, in order of precedence (ported from the teacher's
// pkg/config/config.go):
//  1. Environment variables (TCNFS_*)
//  2. Configuration file (YAML)
//  3. Default values
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the client's process-wide configuration.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Server is the NFSv4.1 server this client connects to.
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Credentials are the AUTH_SYS credentials presented on every RPC call.
	Credentials CredentialsConfig `mapstructure:"credentials" yaml:"credentials"`

	// Compound controls compound sharding capacity (§4.3's
	// MAX_OPS_PER_COMPOUND) and the transactional-batch behavior.
	Compound CompoundConfig `mapstructure:"compound" yaml:"compound"`

	// Retry holds backoff settings for transient transport and
	// NFS4ERR_GRACE/NFS4ERR_DELAY failures. They are loaded and validated
	// here; tcclient.Init does not pass them to the executor, which uses
	// exec.DefaultRetryPolicy.
	Retry RetryConfig `mapstructure:"retry" yaml:"retry"`
}

// LoggingConfig controls logging behavior, mirroring internal/logger.Config
// field-for-field so a loaded Config can be passed straight to logger.Init.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// ServerConfig names the NFSv4.1 server and export this client mounts.
type ServerConfig struct {
	// Address is the server's host:port.
	Address string `mapstructure:"address" yaml:"address"`

	// ExportRoot is the path on the server this client's root-relative
	// paths are resolved against (the PUTROOTFH target).
	ExportRoot string `mapstructure:"export_root" yaml:"export_root"`

	// DialTimeout bounds the initial TCP connect.
	DialTimeout time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
}

// CredentialsConfig is the AUTH_SYS identity presented on every RPC call.
type CredentialsConfig struct {
	MachineName string   `mapstructure:"machine_name" yaml:"machine_name"`
	UID         uint32   `mapstructure:"uid" yaml:"uid"`
	GID         uint32   `mapstructure:"gid" yaml:"gid"`
	GIDs        []uint32 `mapstructure:"gids" yaml:"gids,omitempty"`
}

// CompoundConfig tunes how many ops the Compound Builder packs per shard.
type CompoundConfig struct {
	// MaxReadWriteOps bounds READ/WRITE ops per compound (§4.3).
	MaxReadWriteOps int `mapstructure:"max_read_write_ops" yaml:"max_read_write_ops"`

	// MaxOtherOps bounds every other op kind per compound.
	MaxOtherOps int `mapstructure:"max_other_ops" yaml:"max_other_ops"`

	// Transactional, when true, makes a vectorized call that would need
	// more than one compound fail with E2BIG rather than be sharded.
	Transactional bool `mapstructure:"transactional" yaml:"transactional"`
}

// RetryConfig tunes the bounded exponential backoff used for transient
// failures (§4.4/§7).
type RetryConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	InitialDelay time.Duration `mapstructure:"initial_delay" yaml:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay" yaml:"max_delay"`
}

// Load loads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		cfg := DefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// SaveConfig writes cfg to path in YAML, matching the teacher's practice of
// round-tripping the typed struct through yaml.Marshal rather than viper's
// own (lossier) writer.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("TCNFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// durationDecodeHook converts strings like "30s" into time.Duration,
// the one custom decode hook this client's Config needs (no ByteSize
// fields here, unlike the teacher's server-side Config).
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tcnfs")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "tcnfs")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default
// location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}
