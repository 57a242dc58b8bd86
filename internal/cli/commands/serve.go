package commands

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/csvview/internal/cli/config"
	"github.com/leapstack-labs/csvview/internal/csvconvert"
	"github.com/leapstack-labs/csvview/internal/ui"
	"github.com/leapstack-labs/csvview/pkg/core"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port      int
	NoBrowser bool
	Watch     bool
	Dev       bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"ui"},
		Short:   "Start the browser data viewer",
		Long: `Start a local web server with the data viewer and the CSV conversion
endpoint (GET /api/csv-convert?dataset=<id>).

Each browser session gets its own view: pick a dataset, choose how many rows
to show, and shuffle. Updates are pushed to the page as they happen.`,
		Example: `  # Start on the default port
  csvview serve

  # Start on a custom port without opening a browser
  csvview serve --port 3000 --no-browser

  # View datasets served by another process
  csvview serve --endpoint http://data.internal:8080`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Reload CSV files when they change")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "Enable the live-reload endpoint")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg := config.GetConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())

	// Get UI config with defaults
	uiCfg := cfg.GetUIConfig()

	// CLI flags override config file
	port := uiCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}

	autoOpen := uiCfg.AutoOpen
	if opts.NoBrowser {
		autoOpen = false
	}

	watch := uiCfg.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	// The conversion endpoint is served locally unless another one is configured
	var conv *csvconvert.Converter
	if cfg.Endpoint == "" {
		if _, err := os.Stat(cfg.DataDir); os.IsNotExist(err) {
			return fmt.Errorf("data directory does not exist: %s", cfg.DataDir)
		}
		conv = csvconvert.New(csvconvert.Config{
			DataDir: cfg.DataDir,
			Sources: cfg.Sources(),
			Logger:  logger,
		})
	} else {
		watch = false
	}

	secret, err := sessionSecret(uiCfg.SessionSecret)
	if err != nil {
		return err
	}

	server := ui.NewServer(ui.Config{
		Converter:      conv,
		Endpoint:       cfg.Endpoint,
		Port:           port,
		Watch:          watch,
		Dev:            opts.Dev,
		SessionSecret:  secret,
		SessionTTL:     uiCfg.SessionTTL,
		DefaultDataset: core.DatasetID(uiCfg.DefaultDataset),
		DefaultCap:     uiCfg.DefaultCap,
		Caps:           uiCfg.Caps,
		ColumnOrders:   cfg.GetColumnOrders(),
		Logger:         logger,
	})

	// Open browser if configured
	if autoOpen {
		url := fmt.Sprintf("http://localhost:%d", port)
		go openBrowser(url)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Starting data viewer on http://localhost:%d\n", port)
	_, _ = fmt.Fprintln(out, "Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

// sessionSecret returns the configured secret, or a random one that lasts
// for this process only.
func sessionSecret(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
