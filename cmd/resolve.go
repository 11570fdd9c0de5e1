package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/meridian/internal/document"
	"github.com/papapumpkin/meridian/internal/ui"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve FILE...",
	Short: "Resolve settings documents and print the resolved settings",
	Long: `Loads each FILE (json, toml or yaml, with $(file) includes expanded),
merges them left to right, runs a full resolution pass and writes the
resolved general, body and integrator settings to stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringP("format", "f", "", "output format: json, toml or yaml (default from config)")
	resolveCmd.Flags().StringP("output", "o", "", "write the resolved document to this file instead of stdout")
	resolveCmd.Flags().Bool("bodies", false, "also list the resolved bodies on stderr")
	_ = viper.BindPFlag("output_format", resolveCmd.Flags().Lookup("format"))
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	format, err := document.ParseFormat(sess.cfg.OutputFormat)
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")
	listBodies, _ := cmd.Flags().GetBool("bodies")

	printer := ui.NewTo(cmd.ErrOrStderr())
	sim, err := sess.load(args)
	if err != nil {
		return err
	}
	printer.PassStarted(describe(args))
	start := time.Now()
	if err := sim.Reset(); err != nil {
		printer.PassFailed(err)
		return err
	}
	c := sim.Context()
	printer.PassReady(c, time.Since(start))
	if listBodies {
		printer.Bodies(c.BodySettings)
	}

	data, err := document.Encode(c.Document(), format)
	if err != nil {
		return err
	}
	if output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	printer.Info("wrote " + output)
	return nil
}

func describe(paths []string) string {
	if len(paths) == 1 {
		return paths[0]
	}
	return fmt.Sprintf("%s (+%d more)", paths[0], len(paths)-1)
}
