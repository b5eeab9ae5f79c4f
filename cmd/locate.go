package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mspro-labs/campus-locator/internal/locator"
	"mspro-labs/campus-locator/internal/ocr"
	"mspro-labs/campus-locator/internal/render"
)

var locateCmd = &cobra.Command{
	Use:   "locate [image]",
	Short: "Identify the building in a photo and open its location page",
	Long: `Runs OCR on the photo, matches the text against the campus directory,
scrapes the building's address and map, and opens a generated HTML page.
Without an image argument the path is read from standard input.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLocate,
}

func init() {
	addLocateFlags(locateCmd)
	rootCmd.AddCommand(locateCmd)
}

func addLocateFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-open", false, "write the page but do not open a browser")
}

func runLocate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	imagePath, err := imagePathFrom(args, cmd.InOrStdin(), out)
	if err != nil {
		return err
	}

	var cl closers
	defer cl.run()

	extractor, err := newExtractor(ctx, &cl)
	if err != nil {
		return err
	}
	store, err := openStore(&cl, false)
	if err != nil {
		return err
	}
	f := newFetcher(cmd, &cl)
	source, err := directorySource(cmd, f, store)
	if err != nil {
		return err
	}

	var opener render.Opener = render.BrowserOpener
	if noOpen, _ := cmd.Flags().GetBool("no-open"); noOpen {
		opener = nil
	}
	renderer, err := render.New(appCfg.OutputDir, opener)
	if err != nil {
		return err
	}

	l := &locator.Locator{
		Extractor: extractor,
		Directory: source,
		Fetcher:   f,
		Site:      siteCfg,
		Renderer:  renderer,
		Store:     store,
	}

	res, err := l.Locate(ctx, imagePath)
	if msg, ok := reportMessage(err); ok {
		fmt.Fprintln(out, msg)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Match found: %s (%s)\n", res.Building.Name, res.Building.Key)
	fmt.Fprintf(out, "Location page: %s\n", res.PagePath)
	return nil
}

// imagePathFrom returns the argument or prompts for a path on in.
func imagePathFrom(args []string, in io.Reader, out io.Writer) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	fmt.Fprint(out, "Please enter the full path to the image file: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(line), `"'`), nil
}

// reportMessage maps the expected pipeline outcomes to the text shown to
// the user. ok is false for unexpected errors.
func reportMessage(err error) (msg string, ok bool) {
	switch {
	case err == nil:
		return "", false
	case errors.Is(err, ocr.ErrUnreadableImage):
		return "Error: Unable to read the image. Please check the file path.", true
	case errors.Is(err, ocr.ErrNoText):
		return "No text detected in the image.", true
	case errors.Is(err, locator.ErrBuildingNotFound):
		return "Building not found. Please check your input.", true
	case errors.Is(err, locator.ErrIncompleteInfo):
		return "Unable to retrieve full information for the building.", true
	}
	return "", false
}
