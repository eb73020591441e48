// Package config loads the gateway's static configuration: logging,
// persistence, HTTP transport, JWT verification, credential encryption,
// and upload limits. Dynamic configuration (mounts, storage configs, share
// records, ACLs) lives in the database and is managed through the HTTP API.
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

	"github.com/cloudcrate/filegate/internal/bytesize"
	"github.com/cloudcrate/filegate/pkg/store"
)

// Config represents the gateway's static configuration.
//
// This structure captures everything the process needs before it can serve
// its first request: log output behavior, the control-plane database
// connection, HTTP server settings, JWT verification, credential
// encryption, and the upload size ceiling. Mounts, storage configs, share
// records and ACLs are managed dynamically through the REST API and stored
// in the database described by Database.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (GATEWAY_*) (highest priority)
//  2. Configuration file (YAML or TOML), chosen with the --config flag
//  3. Default values (lowest priority)
type Config struct {
	// Environment selects the runtime profile: dev, staging, or production.
	// Overridden by RUNTIME_ENV.
	Environment string `mapstructure:"environment" validate:"omitempty,oneof=dev staging production" yaml:"environment"`

	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Database configures the control plane database (SQLite or PostgreSQL).
	Database store.Config `mapstructure:"database" yaml:"database"`

	// HTTP contains the chi server's listen address and timeouts
	HTTP HTTPConfig `mapstructure:"http" yaml:"http"`

	// JWT configures verification of externally-issued bearer tokens.
	// Overridden by GATEWAY_JWT_SECRET.
	JWT JWTConfig `mapstructure:"jwt" yaml:"jwt"`

	// Encryption configures AES-GCM encryption of StorageConfig credentials
	// at rest. Secret is overridden by ENCRYPTION_SECRET.
	Encryption EncryptionConfig `mapstructure:"encryption" yaml:"encryption"`

	// Upload holds the configured upload size bound. MaxSize is overridden
	// by MAX_UPLOAD_SIZE; gatewayd start does not read it.
	Upload UploadConfig `mapstructure:"upload" yaml:"upload"`

	// Metrics contains Prometheus metrics server configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// HTTPConfig configures the chi-based HTTP server that fronts the gateway's
// wire-protocol routes.
type HTTPConfig struct {
	// Port is the HTTP listen port
	Port int `mapstructure:"port" validate:"required,min=1,max=65535" yaml:"port"`

	// ReadTimeout bounds how long the server waits to read a request
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout bounds how long the server waits to write a response.
	// Kept generous relative to ReadTimeout since large downloads stream
	// through this same timeout.
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
}

// JWTConfig configures verification of bearer tokens issued by the external
// auth service. Mirrors pkg/principal.JWTConfig.
type JWTConfig struct {
	// Secret signs and verifies HMAC tokens. Must be at least 32 bytes.
	Secret string `mapstructure:"secret" validate:"omitempty,min=32" yaml:"secret"`

	// Issuer is the expected "iss" claim. Default: "filegate"
	Issuer string `mapstructure:"issuer" yaml:"issuer"`
}

// EncryptionConfig configures at-rest encryption of StorageConfig
// credentials.
type EncryptionConfig struct {
	// Secret derives the AES-256 key via HKDF-SHA256. Must be at least 16
	// bytes; overridden by ENCRYPTION_SECRET.
	Secret string `mapstructure:"secret" validate:"omitempty,min=16" yaml:"secret"`
}

// UploadConfig is loaded and saved but not consulted when uploads are
// accepted; the upload limit comes from the "max_upload_size" system setting.
type UploadConfig struct {
	// MaxSize is the maximum size of a single uploaded object.
	// Supports human-readable formats: "1GB", "512MB", "10Gi"
	// Default: 5GB
	MaxSize bytesize.ByteSize `mapstructure:"max_size" yaml:"max_size,omitempty"`
}

// MetricsConfig holds Prometheus metrics server settings. gatewayd start
// does not read it: no metrics HTTP server is started, and the driver
// cache's collectors exist whatever Enabled says.
type MetricsConfig struct {
	// Enabled is loaded and saved but not acted on by gatewayd start
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the metrics endpoint
	// Default: 9090
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (GATEWAY_*, plus ENCRYPTION_SECRET/RUNTIME_ENV/
//     MAX_UPLOAD_SIZE as unprefixed overrides)
//  2. Configuration file
//  3. Default values
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !configFileFound {
		cfg := GetDefaultConfig()
		applyTopLevelOverrides(cfg)
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)
	applyTopLevelOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// applyTopLevelOverrides binds the three spec-mandated unprefixed
// environment variables, which sit outside the GATEWAY_ prefix because they
// are shared conventions (ENCRYPTION_SECRET, RUNTIME_ENV) or a
// operations-facing dial (MAX_UPLOAD_SIZE).
func applyTopLevelOverrides(cfg *Config) {
	if secret := os.Getenv("ENCRYPTION_SECRET"); secret != "" {
		cfg.Encryption.Secret = secret
	}
	if env := os.Getenv("RUNTIME_ENV"); env != "" {
		cfg.Environment = env
	}
	if maxUpload := os.Getenv("MAX_UPLOAD_SIZE"); maxUpload != "" {
		if size, err := bytesize.ParseByteSize(maxUpload); err == nil {
			cfg.Upload.MaxSize = size
		}
	}
}

// MustLoad loads configuration with helpful error messages.
// It checks if the config file exists and provides user-friendly instructions if not.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  gatewayd init\n\n"+
				"Or specify a custom config file:\n"+
				"  gatewayd <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  gatewayd init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the specified file path.
// The configuration is saved in YAML format using proper yaml tags.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Restricted permissions: the config file may carry JWT/encryption secrets.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use GATEWAY_ prefix and underscores
	// Example: GATEWAY_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("GATEWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error) where fileFound indicates if a config file was found.
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

// configDecodeHooks returns a combined decode hook for all custom types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook converts strings and integers to bytesize.ByteSize,
// enabling config files to use human-readable sizes like "1Gi" or "500MB".
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook converts strings to time.Duration, enabling config
// files to use human-readable durations like "30s", "5m", "1h".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
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

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to the
// current directory if the home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "filegate")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "filegate")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	path := GetDefaultConfigPath()
	_, err := os.Stat(path)
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}
