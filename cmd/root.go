package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "meridian",
	Short: "Declarative settings resolver for dynamics propagation",
	Long: `Meridian turns a hierarchical settings document into a fully wired set of
simulation entities: bodies, ephemerides, reference frames and integrator
settings. Every resolution pass reloads ephemeris kernels and rebuilds all
entities from scratch.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default .meridian.yaml)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("kernel-dir", "", "directory for relative kernel paths")
	flags.String("telemetry", "", "append pass events to this JSONL file")
	flags.String("history-db", "", "SQLite file recording resolution passes")

	for key, flag := range map[string]string{
		"verbose":        "verbose",
		"log_level":      "log-level",
		"kernel_dir":     "kernel-dir",
		"telemetry_path": "telemetry",
		"history_db":     "history-db",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func initConfig() {
	// A .env file is optional; anything else is worth reporting.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}

	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".meridian")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("MERIDIAN")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}
