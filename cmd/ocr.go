package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr <image>",
	Short: "Print the filtered text recognized in a photo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var cl closers
		defer cl.run()

		extractor, err := newExtractor(cmd.Context(), &cl)
		if err != nil {
			return err
		}
		text, err := extractor.Extract(cmd.Context(), args[0])
		if msg, ok := reportMessage(err); ok {
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ocrCmd)
}
