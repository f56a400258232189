// Package runcmd implements the catalogsync subcommands: the run
// orchestrator itself plus the report and duplicates helpers.
//
// A run is a linear sequence of stages. Environment resolution, the scraper
// and locating the extraction directory are fatal on failure; the two upload
// passes only warn and the run still completes with status zero.
package runcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/padelhub/catalogsync/internal/config"
	"github.com/padelhub/catalogsync/internal/extraction"
	"github.com/padelhub/catalogsync/internal/runlog"
	"github.com/padelhub/catalogsync/internal/venv"
)

// External collaborator scripts, run from the project root inside the
// virtualenv.
const (
	scrapeScript = "scraping_final.py"
	uploadScript = "upload_shopify_hybrid.py"
)

// Orchestrator sequences one pipeline run.
type Orchestrator struct {
	Config *config.Config
	Runner CommandRunner
	Now    func() time.Time
}

func executeRun(ctx context.Context, cfg *config.Config) error {
	start := time.Now()
	run, err := runlog.Open(cfg.LogsDir(), start, os.Stderr)
	if err != nil {
		return err
	}
	defer run.Close()

	o := &Orchestrator{Config: cfg, Runner: ExecRunner{}, Now: time.Now}
	summary, err := o.Execute(ctx, run.Logger, run.Writer(), start)
	if err != nil {
		run.Logger.Error("run aborted", "error", err)
		return err
	}

	summary.LogFile = run.Path
	if path, err := summary.Save(cfg.LogsDir()); err != nil {
		run.Logger.Warn("could not write run summary", "error", err)
	} else {
		run.Logger.Info("run summary written", "path", path)
	}
	return nil
}

// Execute walks the stages in order and returns the run summary, or an error
// when a fatal stage failed. Non-fatal upload failures are recorded in the
// summary and logged as warnings.
func (o *Orchestrator) Execute(ctx context.Context, log *slog.Logger, out io.Writer, start time.Time) (*Summary, error) {
	cfg := o.Config
	summary := &Summary{StartedAt: start}

	venvDir, err := venv.Resolve(cfg.ProjectDir, cfg.VenvDir)
	if err != nil {
		return nil, err
	}
	log.Info("virtualenv resolved", "dir", venvDir)

	env, err := venv.Activate(venvDir, os.Environ())
	if err != nil {
		return nil, err
	}
	python := venv.Python(venvDir)

	log.Info("running scraper", "script", scrapeScript)
	scrapeStart := o.Now()
	if err := o.runStep(ctx, out, Command{
		Name: python,
		Args: []string{scrapeScript},
		Dir:  cfg.ProjectDir,
		Env:  env,
	}); err != nil {
		return nil, fmt.Errorf("scraper failed: %w", err)
	}
	summary.ScrapeMinutes = o.Now().Sub(scrapeStart).Minutes()
	log.Info("scraper finished")

	if err := o.uploadPhase(ctx, log, out, python, env, summary); err != nil {
		return nil, err
	}

	summary.FinishedAt = o.Now()
	fmt.Fprintf(out, "\n==================================================\n")
	fmt.Fprintf(out, "Proceso completado: %s\n", summary.FinishedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "==================================================\n")
	return summary, nil
}

func (o *Orchestrator) uploadPhase(ctx context.Context, log *slog.Logger, out io.Writer, python string, env []string, summary *Summary) error {
	cfg := o.Config

	if !cfg.HasCredentials() {
		log.Warn("SHOPIFY_DOMAIN or SHOPIFY_ADMIN_TOKEN not set, skipping upload")
		summary.UploadSkipped = true
		summary.SkipReason = "missing Shopify credentials"
		return nil
	}

	dir, err := extraction.Latest(cfg.ProjectDir)
	if err != nil {
		if cfg.DryRun {
			log.Warn("no extraction directory yet, skipping upload preview", "error", err)
			summary.UploadSkipped = true
			summary.SkipReason = "dry-run without extraction directory"
			return nil
		}
		return fmt.Errorf("cannot upload: %w", err)
	}
	summary.ExtractionDir = dir
	log.Info("extraction directory selected", "dir", dir)

	// Data pass first: catalog fields sync fast without the image work.
	log.Info("upload data pass starting", "source", dir)
	dataStart := o.Now()
	summary.DataPass.Ran = true
	if err := o.runStep(ctx, out, Command{
		Name: python,
		Args: []string{uploadScript, "--skip-images", "--source-dir", dir},
		Dir:  cfg.ProjectDir,
		Env:  env,
	}); err != nil {
		log.Warn("upload data pass failed, continuing with image pass", "error", err)
	} else {
		summary.DataPass.Succeeded = true
		summary.DataPass.DurationMinutes = o.Now().Sub(dataStart).Minutes()
		log.Info("upload data pass finished", "duration", FormatMinutes(summary.DataPass.DurationMinutes))
	}

	log.Info("upload image pass starting", "source", dir)
	imageStart := o.Now()
	summary.ImagePass.Ran = true
	if err := o.runStep(ctx, out, Command{
		Name: python,
		Args: []string{uploadScript, "--source-dir", dir},
		Dir:  cfg.ProjectDir,
		Env:  env,
	}); err != nil {
		log.Warn("upload image pass failed", "error", err)
	} else {
		summary.ImagePass.Succeeded = true
		summary.ImagePass.DurationMinutes = o.Now().Sub(imageStart).Minutes()
		log.Info("upload image pass finished", "duration", FormatMinutes(summary.ImagePass.DurationMinutes))
	}

	if summary.DataPass.Succeeded && summary.ImagePass.Succeeded {
		summary.TotalUploadMinutes = summary.DataPass.DurationMinutes + summary.ImagePass.DurationMinutes
		log.Info("upload finished", "total", FormatMinutes(summary.TotalUploadMinutes))
	}

	count, exists, err := extraction.CountFailedImages(dir)
	switch {
	case err != nil:
		log.Warn("could not read failed-images report", "error", err)
	case exists && count > 0:
		summary.FailedImages = count
		log.Warn("some images failed to upload",
			"count", count,
			"report", filepath.Join(dir, extraction.FailedImagesReport))
	}
	return nil
}

func (o *Orchestrator) runStep(ctx context.Context, out io.Writer, c Command) error {
	if o.Config.DryRun {
		fmt.Fprintf(out, "dry-run: %s %s\n", c.Name, strings.Join(c.Args, " "))
		return nil
	}
	return o.Runner.Run(ctx, c, out)
}

// FormatMinutes renders an upload duration in minutes with its hours+minutes
// equivalent, e.g. "135 min (2h 15m)".
func FormatMinutes(minutes float64) string {
	total := int(minutes + 0.5)
	return fmt.Sprintf("%d min (%dh %02dm)", total, total/60, total%60)
}
