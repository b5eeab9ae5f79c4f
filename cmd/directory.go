package cmd

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mspro-labs/campus-locator/internal/db"
	"mspro-labs/campus-locator/internal/models"
	"mspro-labs/campus-locator/internal/scraper"
)

var directoryCmd = &cobra.Command{
	Use:   "directory",
	Short: "Inspect or snapshot the campus building directory",
}

var directoryListCmd = &cobra.Command{
	Use:   "list [filter]",
	Short: "Print directory keys, names and page URLs",
	Long: `Scrapes the directory (or reads the snapshot with --offline) and prints
every key sorted. An optional filter keeps keys or names containing it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var cl closers
		defer cl.run()

		store, err := openStore(&cl, false)
		if err != nil {
			return err
		}
		source, err := directorySource(cmd, newFetcher(cmd, &cl), store)
		if err != nil {
			return err
		}
		dir, err := source(cmd.Context())
		if err != nil {
			return err
		}

		filter := ""
		if len(args) == 1 {
			filter = args[0]
		}
		entries := filterEntries(dir, filter)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Key, e.Name, e.URL)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d key(s)\n", len(entries))
		return nil
	},
}

var directorySyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Scrape the directory and save it to the snapshot store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var cl closers
		defer cl.run()

		store, err := openStore(&cl, true)
		if err != nil {
			return err
		}
		dir, err := scraper.FetchDirectory(cmd.Context(), newFetcher(cmd, &cl), siteCfg)
		if err != nil {
			return err
		}
		if len(dir) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Directory page had no buildings; snapshot left unchanged.")
			return nil
		}
		count, err := db.SaveDirectory(store, dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %d directory key(s).\n", count)
		return nil
	},
}

func init() {
	directoryCmd.AddCommand(directoryListCmd, directorySyncCmd)
	rootCmd.AddCommand(directoryCmd)
}

// filterEntries returns the entries whose key or name contains filter
// (case-insensitive), sorted by key.
func filterEntries(dir models.Directory, filter string) []models.DirectoryEntry {
	filter = strings.ToUpper(strings.TrimSpace(filter))
	entries := make([]models.DirectoryEntry, 0, len(dir))
	for key, e := range dir {
		if filter != "" && !strings.Contains(key, filter) && !strings.Contains(strings.ToUpper(e.Name), filter) {
			continue
		}
		e.Key = key
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}
