package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/csvview/internal/cli/config"
	"github.com/leapstack-labs/csvview/internal/csvconvert"
	"github.com/leapstack-labs/csvview/internal/viewer"
	"github.com/leapstack-labs/csvview/pkg/core"
)

// ShowOptions holds options for the show command.
type ShowOptions struct {
	Dataset string
	Cap     int
	Shuffle bool
	Format  string
}

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	opts := &ShowOptions{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a dataset the way the viewer shows it",
		Long: `Load a dataset, optionally shuffle it, and print the rows the viewer
would display under the current row cap.

Rows come from the CSV conversion endpoint when one is configured, and are
read straight from the data directory otherwise.`,
		Example: `  # Show the first 50 rows of the google dataset
  csvview show

  # Shuffle the merged dataset and keep 10 rows
  csvview show --dataset merged --cap 10 --shuffle

  # Read from a running server as markdown
  csvview show --endpoint http://localhost:8765 --format markdown`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShow(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Dataset, "dataset", "d", "", "Dataset to show (default: ui.default_dataset)")
	cmd.Flags().IntVar(&opts.Cap, "cap", 0, "Row cap (default: ui.default_cap)")
	cmd.Flags().BoolVar(&opts.Shuffle, "shuffle", false, "Shuffle rows before applying the cap")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", FormatTable, "Output format (table|markdown|csv|json)")

	_ = cmd.RegisterFlagCompletionFunc("dataset", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		var ids []string
		for _, opt := range core.KnownDatasets() {
			ids = append(ids, opt.ID.String())
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return Formats, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runShow(cmd *cobra.Command, opts *ShowOptions) error {
	ctx := cmd.Context()
	cfg := config.GetConfig(ctx)
	logger := config.GetLogger(ctx)
	uiCfg := cfg.GetUIConfig()

	dataset := core.DatasetID(uiCfg.DefaultDataset)
	if opts.Dataset != "" {
		dataset = core.DatasetID(opts.Dataset)
	}
	rowCap := uiCfg.DefaultCap
	if cmd.Flags().Changed("cap") {
		if opts.Cap <= 0 {
			return fmt.Errorf("--cap must be positive, got %d", opts.Cap)
		}
		rowCap = opts.Cap
	}

	ctrl := viewer.New(viewer.Config{
		Loader:       newLoader(cfg, logger),
		Logger:       logger,
		Dataset:      dataset,
		RowCap:       rowCap,
		ColumnOrders: cfg.GetColumnOrders(),
		Context:      ctx,
	})

	select {
	case <-ctrl.Start():
	case <-ctx.Done():
		return ctx.Err()
	}

	snap := ctrl.Snapshot()
	if opts.Shuffle {
		snap = ctrl.Shuffle()
	}

	return renderView(cmd.OutOrStdout(), snap.View(), opts.Format)
}

// newLoader returns an HTTP loader for the configured endpoint, falling back
// to reading the data directory directly.
func newLoader(cfg *config.Config, logger *slog.Logger) viewer.Loader {
	if cfg.Endpoint != "" {
		logger.Debug("loading rows over HTTP", "endpoint", cfg.Endpoint)
		return viewer.NewHTTPLoader(cfg.Endpoint, nil)
	}

	logger.Debug("loading rows from data directory", "dir", cfg.DataDir)
	return csvconvert.New(csvconvert.Config{
		DataDir: cfg.DataDir,
		Sources: cfg.Sources(),
		Logger:  logger,
	})
}
