// Package config loads server configuration.
//
// Sources, highest priority first:
//  1. CLI flags
//  2. Environment variables (K8S_ASSESS_* prefix, "." replaced by "_")
//  3. YAML config file given with --config
//  4. Built-in defaults
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "K8S_ASSESS"

// Config contains all configuration fields.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Kube    KubeConfig    `mapstructure:"kube"`
	Workers WorkersConfig `mapstructure:"workers"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig configures the HTTP variant.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	MessagesPath    string        `mapstructure:"messages_path"`
	HealthPath      string        `mapstructure:"health_path"`
	MetricsPath     string        `mapstructure:"metrics_path"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// KubeConfig selects cluster credentials.
type KubeConfig struct {
	Kubeconfig string        `mapstructure:"kubeconfig"`
	Context    string        `mapstructure:"context"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// WorkersConfig sizes the fetch pool.
type WorkersConfig struct {
	Size int `mapstructure:"size"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig returns a configuration with all default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = "0.0.0.0:8000"
	cfg.Server.MessagesPath = "/messages"
	cfg.Server.HealthPath = "/health"
	cfg.Server.MetricsPath = "/metrics"
	cfg.Server.ShutdownTimeout = 5 * time.Second

	cfg.Kube.Timeout = 30 * time.Second

	cfg.Workers.Size = 8

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	return cfg
}

// FlagKeys maps CLI flag names to config keys.
var FlagKeys = map[string]string{
	"kubeconfig": "kube.kubeconfig",
	"context":    "kube.context",
	"log-level":  "logging.level",
	"workers":    "workers.size",
	"addr":       "server.address",
}

// Load reads configuration from path (optional), the environment and any
// flags in flags that appear in FlagKeys.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("server.messages_path", d.Server.MessagesPath)
	v.SetDefault("server.health_path", d.Server.HealthPath)
	v.SetDefault("server.metrics_path", d.Server.MetricsPath)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("kube.kubeconfig", d.Kube.Kubeconfig)
	v.SetDefault("kube.context", d.Kube.Context)
	v.SetDefault("kube.timeout", d.Kube.Timeout)

	v.SetDefault("workers.size", d.Workers.Size)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// Validate returns every problem found, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Server.Address == "" {
		add("server.address", "address is required")
	}
	for field, p := range map[string]string{
		"server.messages_path": c.Server.MessagesPath,
		"server.health_path":   c.Server.HealthPath,
		"server.metrics_path":  c.Server.MetricsPath,
	} {
		if !strings.HasPrefix(p, "/") {
			add(field, "path must start with /, got %q", p)
		}
	}
	if c.Server.ShutdownTimeout <= 0 {
		add("server.shutdown_timeout", "must be positive, got %s", c.Server.ShutdownTimeout)
	}
	if c.Kube.Timeout <= 0 {
		add("kube.timeout", "must be positive, got %s", c.Kube.Timeout)
	}
	if c.Workers.Size < 1 {
		add("workers.size", "must be at least 1, got %d", c.Workers.Size)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		add("logging.level", "must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		add("logging.format", "must be json or console, got %q", c.Logging.Format)
	}

	return errors.Join(errs...)
}
