package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/meridian/internal/document"
	"github.com/papapumpkin/meridian/internal/kernel"
	"github.com/papapumpkin/meridian/internal/spice"
	"github.com/papapumpkin/meridian/internal/ui"
)

var kernelsCmd = &cobra.Command{
	Use:   "kernels FILE",
	Short: "Load the kernels listed in a settings document and show their types",
	Long: `Reads simulation.spiceKernels from FILE, loads them in order the same way
a resolution pass does, and lists the identified kernel types. Nothing else
in the document is resolved.`,
	Args: cobra.ExactArgs(1),
	RunE: runKernels,
}

func init() {
	rootCmd.AddCommand(kernelsCmd)
}

func runKernels(cmd *cobra.Command, args []string) error {
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	doc, err := document.LoadFile(args[0])
	if err != nil {
		return err
	}
	paths, err := document.Get(doc, document.MustPath("simulation.spiceKernels"), []string{})
	if err != nil {
		return err
	}
	mgr := kernel.Manager{Backend: sess.pool, Dir: sess.cfg.KernelDir}
	if _, err := mgr.Reload(paths); err != nil {
		var le *kernel.LoadError
		if errors.As(err, &le) && errors.Is(err, spice.ErrUnknownKernelType) {
			return fmt.Errorf("%s is not a recognized kernel: %w", le.Path, err)
		}
		return err
	}
	ui.NewTo(cmd.OutOrStdout()).Kernels(sess.pool.Loaded())
	return nil
}
