package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"mspro-labs/campus-locator/internal/db"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded lookups (needs --db)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var cl closers
		defer cl.run()

		store, err := openStore(&cl, true)
		if err != nil {
			return err
		}
		entries, err := db.ListLookups(store)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No history found.")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(out, "[%s] %q -> %s (%s) %s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.OCRText, e.Name, e.Key, e.Address)
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded lookups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var cl closers
		defer cl.run()

		store, err := openStore(&cl, true)
		if err != nil {
			return err
		}
		affected, err := db.ClearLookups(store)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entry(s).\n", affected)
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
