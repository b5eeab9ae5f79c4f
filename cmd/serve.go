package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mspro-labs/campus-locator/internal/locator"
	"mspro-labs/campus-locator/internal/models"
	"mspro-labs/campus-locator/internal/render"
	"mspro-labs/campus-locator/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Web UI server",
	Long: `Serves the building directory at / and the location page for a key at
/building?key=PMA. The directory is loaded once at startup.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServer(cmd *cobra.Command) error {
	var cl closers
	defer cl.run()

	// 1. Setup
	store, err := openStore(&cl, false)
	if err != nil {
		return err
	}
	f := newFetcher(cmd, &cl)
	source, err := directorySource(cmd, f, store)
	if err != nil {
		return err
	}
	dir, err := source(cmd.Context())
	if err != nil {
		return err
	}

	renderer, err := render.New("", nil)
	if err != nil {
		return err
	}
	l := &locator.Locator{Fetcher: f, Site: siteCfg}

	mux, err := newServeMux(dir, l, renderer)
	if err != nil {
		return err
	}

	// 2. Start Server
	addr := fmt.Sprintf(":%d", appCfg.Server.Port)
	fmt.Fprintf(cmd.OutOrStdout(), "Web UI started at http://localhost%s\n", addr)
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: time.Duration(appCfg.Fetch.TimeoutSecs+10) * time.Second,
		ErrorLog:     zap.NewStdLog(zap.L().Named("http")),
	}

	go func() {
		<-cmd.Context().Done()
		_ = server.Close()
	}()
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// homeData is passed to the home template.
type homeData struct {
	Filter  string
	Entries []models.DirectoryEntry
}

func newServeMux(dir models.Directory, l *locator.Locator, renderer *render.Renderer) (*http.ServeMux, error) {
	logger := zap.L().Named("serve")

	// Base Template (shared layout) + Home Template
	homeTmpl, err := web.Template("base.html", "home.html")
	if err != nil {
		return nil, eris.Wrap(err, "serve: parse home template")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		filter := r.URL.Query().Get("q")
		data := homeData{Filter: filter, Entries: filterEntries(dir, filter)}
		if err := homeTmpl.ExecuteTemplate(w, "base.html", data); err != nil {
			logger.Error("template error", zap.Error(err))
		}
	})

	mux.HandleFunc("/building", func(w http.ResponseWriter, r *http.Request) {
		key := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("key")))
		entry, ok := dir[key]
		if !ok {
			http.Error(w, "Building not found.", http.StatusNotFound)
			return
		}

		building, err := l.Details(r.Context(), key, entry)
		if errors.Is(err, locator.ErrIncompleteInfo) {
			http.Error(w, "Unable to retrieve full information for the building.", http.StatusBadGateway)
			return
		}
		if err != nil {
			logger.Error("detail fetch failed", zap.String("key", key), zap.Error(err))
			http.Error(w, "Failed to load building page", http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := renderer.Write(w, building); err != nil {
			logger.Error("template error", zap.Error(err))
		}
	})

	return mux, nil
}
