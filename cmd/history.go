package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/meridian/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded resolution passes",
	Long: `Lists the passes recorded in the history database, newest first.
With --show, prints the resolved document of the latest ready pass
(optionally restricted to --source).`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "number of passes to list (0 for all)")
	historyCmd.Flags().Bool("show", false, "print the latest resolved document")
	historyCmd.Flags().String("source", "", "restrict --show to passes of this document")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()
	store := sess.history
	if store == nil {
		return errors.New("history: no history database configured (set history_db or --history-db)")
	}

	if show, _ := cmd.Flags().GetBool("show"); show {
		source, _ := cmd.Flags().GetString("source")
		p, err := store.Latest(commandContext(cmd), source)
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), p.Document)
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	passes, err := store.List(commandContext(cmd), limit)
	if err != nil {
		return err
	}
	ui.NewTo(cmd.OutOrStdout()).History(passes)
	return nil
}
