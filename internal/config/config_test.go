package config

import (
	"testing"

	"github.com/spf13/viper"
)

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper() {
	viper.Reset()
}

func TestLoad_Defaults(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"KernelDir", cfg.KernelDir, "."},
		{"TelemetryPath", cfg.TelemetryPath, ""},
		{"HistoryDB", cfg.HistoryDB, ".meridian/history.db"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"MetricsAddr", cfg.MetricsAddr, ""},
		{"OutputFormat", cfg.OutputFormat, "json"},
		{"Verbose", cfg.Verbose, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "kernel_dir",
			envKey: "MERIDIAN_KERNEL_DIR",
			envVal: "/data/kernels",
			field:  func(c Config) any { return c.KernelDir },
			want:   "/data/kernels",
		},
		{
			name:   "telemetry_path",
			envKey: "MERIDIAN_TELEMETRY_PATH",
			envVal: "/tmp/events.jsonl",
			field:  func(c Config) any { return c.TelemetryPath },
			want:   "/tmp/events.jsonl",
		},
		{
			name:   "log_level",
			envKey: "MERIDIAN_LOG_LEVEL",
			envVal: "debug",
			field:  func(c Config) any { return c.LogLevel },
			want:   "debug",
		},
		{
			name:   "output_format",
			envKey: "MERIDIAN_OUTPUT_FORMAT",
			envVal: "yaml",
			field:  func(c Config) any { return c.OutputFormat },
			want:   "yaml",
		},
		{
			name:   "verbose",
			envKey: "MERIDIAN_VERBOSE",
			envVal: "true",
			field:  func(c Config) any { return c.Verbose },
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			// Set env prefix so MERIDIAN_* env vars map to config keys.
			viper.SetEnvPrefix("MERIDIAN")
			viper.AutomaticEnv()

			t.Setenv(tt.envKey, tt.envVal)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			got := tt.field(cfg)
			if got != tt.want {
				t.Errorf("%s: got %v (%T), want %v (%T)", tt.name, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestLoad_DefaultsAreNotZero(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.KernelDir == "" {
		t.Error("KernelDir should not be empty")
	}
	if cfg.HistoryDB == "" {
		t.Error("HistoryDB should not be empty")
	}
	if cfg.LogLevel == "" {
		t.Error("LogLevel should not be empty")
	}
}
