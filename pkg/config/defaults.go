package config

import (
	"strings"
	"time"

	"github.com/cloudcrate/filegate/internal/bytesize"
	"github.com/cloudcrate/filegate/pkg/store"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and
// environment variables to fill in any missing values with sensible
// defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
//   - Database-specific defaults are handled by store.Config.ApplyDefaults
func ApplyDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "dev"
	}
	applyLoggingDefaults(&cfg.Logging)
	applyShutdownDefaults(cfg)
	cfg.Database.ApplyDefaults()
	applyHTTPDefaults(&cfg.HTTP)
	applyJWTDefaults(&cfg.JWT)
	applyUploadDefaults(&cfg.Upload)
	applyMetricsDefaults(&cfg.Metrics)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
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

func applyShutdownDefaults(cfg *Config) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyHTTPDefaults sets HTTP server defaults.
func applyHTTPDefaults(cfg *HTTPConfig) {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 60 * time.Second
	}
}

// applyJWTDefaults sets JWT verification defaults.
func applyJWTDefaults(cfg *JWTConfig) {
	if cfg.Issuer == "" {
		cfg.Issuer = "filegate"
	}
}

// applyUploadDefaults sets the upload size ceiling default.
func applyUploadDefaults(cfg *UploadConfig) {
	if cfg.MaxSize == 0 {
		cfg.MaxSize = 5 * bytesize.GB
	}
}

// applyMetricsDefaults sets Prometheus metrics server defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// GetDefaultConfig returns a Config populated entirely with defaults,
// suitable for running without a config file.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Database: store.Config{Type: store.DatabaseTypeSQLite},
	}
	ApplyDefaults(cfg)
	return cfg
}
