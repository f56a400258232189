package cmd

import (
	"github.com/padelhub/catalogsync/internal/runcmd"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalogsync",
		Short: "Run orchestrator for the padel catalog scrape-and-upload pipeline",
		Long: `Catalogsync sequences the catalog pipeline: it runs the scraper inside the
project virtualenv, then synchronizes the newest extraction directory to the
Shopify store in two passes (data first, then images).

All output of a run is duplicated into a timestamped log file under logs/.
The scraper and uploader themselves are external scripts; catalogsync only
orchestrates them.`,
	}

	// Add subcommands
	cmd.AddCommand(runcmd.NewRunCmd())
	cmd.AddCommand(runcmd.NewReportCmd())
	cmd.AddCommand(runcmd.NewDuplicatesCmd())

	return cmd
}
