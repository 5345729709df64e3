// Package config loads and validates runtime configuration at startup.
// Fail-fast: an invalid value is reported before anything is opened.
//
// Sources, lowest precedence first: defaults, edluar.yaml, a .env file,
// EDLUAR_* environment variables, command-line flags bound by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration.
type Config struct {
	HTTPAddr      string `mapstructure:"http_addr"`
	GRPCAddr      string `mapstructure:"grpc_addr"`
	DatabaseURL   string `mapstructure:"database_url"`
	RedisURL      string `mapstructure:"redis_url"` // optional; events are dropped when empty
	SweepSchedule string `mapstructure:"sweep_schedule"`
	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	ServerURL     string `mapstructure:"server_url"`
	DragThreshold int    `mapstructure:"drag_threshold"`
}

var defaults = map[string]any{
	"http_addr":      ":8080",
	"grpc_addr":      ":9090",
	"database_url":   "sqlite:edluar.db",
	"redis_url":      "",
	"sweep_schedule": "@every 15m",
	"log_level":      "info",
	"log_format":     "text",
	"server_url":     "http://localhost:8080",
	"drag_threshold": 8,
}

// New returns a viper instance with defaults and environment bindings.
// DATABASE_URL and REDIS_URL are accepted as fallbacks for the prefixed names.
func New() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix("EDLUAR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("database_url", "EDLUAR_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("redis_url", "EDLUAR_REDIS_URL", "REDIS_URL")
	return v
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are ignored; variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configFile (or edluar.yaml from the working directory when
// empty, if present) into v and returns a validated Config.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("edluar")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database_url is required")
	}
	if !strings.HasPrefix(c.DatabaseURL, "sqlite:") &&
		!strings.HasPrefix(c.DatabaseURL, "postgres://") &&
		!strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		return fmt.Errorf("database_url must start with sqlite:, postgres:// or postgresql://, got %q", c.DatabaseURL)
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("http_addr is required")
	}
	if c.GRPCAddr == "" {
		return fmt.Errorf("grpc_addr is required")
	}
	if c.SweepSchedule != "" {
		if _, err := cron.ParseStandard(c.SweepSchedule); err != nil {
			return fmt.Errorf("sweep_schedule %q: %w", c.SweepSchedule, err)
		}
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	if c.DragThreshold < 1 {
		return fmt.Errorf("drag_threshold must be a positive integer, got %d", c.DragThreshold)
	}
	return nil
}
