package runcmd

import (
	"github.com/padelhub/catalogsync/internal/config"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command, the orchestrator itself.
func NewRunCmd() *cobra.Command {
	var projectDir string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scrape-and-upload pipeline",
		Long: `Runs the full pipeline: scraper first, then the uploader against the newest
extraction directory, once with --skip-images and once without. The uploader
only runs when both Shopify credentials are set; otherwise that phase is
skipped with a warning.

A scraper failure aborts the run. Upload failures are logged as warnings and
the run still completes. Everything printed during the run is duplicated
into logs/scraper_<timestamp>.log under the project directory.`,
		Example: `  # Run against the current directory
  catalogsync run

  # Run against an explicit project checkout
  catalogsync run --project-dir /srv/padel

  # Show what would be executed without running anything
  catalogsync run --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(projectDir)
			if err != nil {
				return err
			}
			cfg.DryRun = dryRun
			return executeRun(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&projectDir, "project-dir", "", "Project root (defaults to $PROJECT_DIR, then the working directory)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log the subprocess invocations without executing them")

	return cmd
}

// NewReportCmd creates the report command, which prints the last run summary.
func NewReportCmd() *cobra.Command {
	var projectDir string
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the summary of the most recent run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(projectDir)
			if err != nil {
				return err
			}
			return executeReport(cfg, format)
		},
	}

	cmd.Flags().StringVar(&projectDir, "project-dir", "", "Project root (defaults to $PROJECT_DIR, then the working directory)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")

	return cmd
}

// NewDuplicatesCmd creates the duplicates command, a pre-upload check for
// handles claimed by more than one product.
func NewDuplicatesCmd() *cobra.Command {
	var projectDir string
	var sourceDir string

	cmd := &cobra.Command{
		Use:   "duplicates",
		Short: "Scan the extraction CSVs for duplicate URL handles",
		Long: `Scans the data CSVs of an extraction directory and lists URL handles that
belong to more than one product. Duplicate handles collapse into a single
Shopify product on upload, so they are worth fixing before running the
pipeline.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(projectDir)
			if err != nil {
				return err
			}
			return executeDuplicates(cfg, sourceDir)
		},
	}

	cmd.Flags().StringVar(&projectDir, "project-dir", "", "Project root (defaults to $PROJECT_DIR, then the working directory)")
	cmd.Flags().StringVar(&sourceDir, "source-dir", "", "Extraction directory to scan (defaults to the newest one)")

	return cmd
}
