package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/meridian/internal/ui"
)

var errValidation = errors.New("validation failed")

var validateCmd = &cobra.Command{
	Use:   "validate FILE...",
	Short: "Check that each settings document resolves",
	Long: `Resolves every FILE on its own and reports the first error of each,
with the full path of the offending key. Exits non-zero if any file fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer sess.Close()

		printer := ui.NewTo(cmd.ErrOrStderr())
		failed := 0
		for _, path := range args {
			sim, err := sess.load([]string{path})
			if err == nil {
				err = sim.Reset()
			}
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %v\n", path, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ %s: %d bodies, %d arcs\n", path, len(sim.Context().Bodies), sim.Context().Arcs)
		}
		if failed > 0 {
			printer.Error(fmt.Sprintf("%d of %d document(s) failed", failed, len(args)))
			return fmt.Errorf("%w: %d document(s)", errValidation, failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
