// Package config loads session settings for the meridian CLI.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for a meridian session.
// Values are populated from .meridian.yaml, MERIDIAN_* env vars, and CLI flags.
type Config struct {
	KernelDir     string `mapstructure:"kernel_dir"`
	TelemetryPath string `mapstructure:"telemetry_path"`
	HistoryDB     string `mapstructure:"history_db"`
	LogLevel      string `mapstructure:"log_level"`
	MetricsAddr   string `mapstructure:"metrics_addr"`
	OutputFormat  string `mapstructure:"output_format"`
	Verbose       bool   `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("kernel_dir", ".")
	viper.SetDefault("telemetry_path", "")
	viper.SetDefault("history_db", ".meridian/history.db")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("metrics_addr", "")
	viper.SetDefault("output_format", "json")
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
