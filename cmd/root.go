package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"mspro-labs/campus-locator/internal/config"
)

var (
	v       = viper.New()
	appCfg  *config.AppConfig
	siteCfg *config.SiteConfig
)

var rootCmd = &cobra.Command{
	Use:   "campus-locator [image]",
	Short: "Find a campus building from a photo of its sign",
	Long: `Reads the building name from a photo with OCR, looks it up in the campus
directory and opens a page with the building's address and map.

Running without a subcommand is the same as 'campus-locator locate'.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(v)
		if err != nil {
			return err
		}
		appCfg = c

		if err := config.InitLogger(appCfg.Log); err != nil {
			return err
		}

		s, err := config.LoadSiteConfig(appCfg.SiteConfigPath)
		if err != nil {
			return err
		}
		siteCfg = s
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLocate(cmd, args)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("site-config", "", "path to a site YAML file (default: embedded UT Austin directory)")
	pf.String("db", "", "path to the SQLite snapshot store (enables history and --offline)")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.Bool("browser-fetch", false, "fetch pages with headless Chromium instead of plain HTTP")
	pf.String("engine", "", "OCR engine: tesseract or gemini")
	pf.Bool("offline", false, "use the directory snapshot from --db instead of scraping")

	_ = v.BindPFlag("site_config", pf.Lookup("site-config"))
	_ = v.BindPFlag("db_path", pf.Lookup("db"))
	_ = v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = v.BindPFlag("ocr.engine", pf.Lookup("engine"))

	addLocateFlags(rootCmd)
}

// Execute runs the root command with SIGINT cancelling the context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
