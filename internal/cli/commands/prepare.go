package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/csvview/internal/cli/config"
	"github.com/leapstack-labs/csvview/internal/csvconvert"
)

// NewPrepareCommand creates the prepare command.
func NewPrepareCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prepare",
		Short: "Derive the website_address and merged datasets",
		Long: `Build the derived dataset files inside the data directory:

- website_dataset_with_address.csv: the website dataset with main_city,
  main_region, and main_country joined into a single address column.
- merged_dataset.csv: google, website, and facebook rows projected to
  name, phone, category, source, address and deduplicated on phone and
  address, preferring google, then website, then facebook.`,
		Example: `  csvview prepare --data-dir ./public`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetConfig(cmd.Context())
			logger := config.GetLogger(cmd.Context())

			conv := csvconvert.New(csvconvert.Config{
				DataDir: cfg.DataDir,
				Sources: cfg.Sources(),
				Logger:  logger,
			})

			res, err := conv.Prepare()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Wrote %s (%d rows)\n", res.WebsiteAddressPath, res.WebsiteAddressRows)
			_, _ = fmt.Fprintf(out, "Wrote %s (%d rows)\n", res.MergedPath, res.MergedRows)
			return nil
		},
	}
}
