package runcmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/padelhub/catalogsync/internal/config"
)

func executeReport(cfg *config.Config, format string) error {
	summary, err := LoadLatest(cfg.LogsDir())
	if err != nil {
		return fmt.Errorf("failed to load run summary: %w", err)
	}

	switch format {
	case "text":
		printTextSummary(os.Stdout, summary)
		return nil
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summary)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printTextSummary(w io.Writer, s *Summary) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, "Last run")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Started:          %s\n", s.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Finished:         %s\n", s.FinishedAt.Format("2006-01-02 15:04:05"))
	if s.LogFile != "" {
		fmt.Fprintf(w, "Log file:         %s\n", s.LogFile)
	}
	fmt.Fprintf(w, "Scrape:           %s\n", FormatMinutes(s.ScrapeMinutes))

	if s.UploadSkipped {
		fmt.Fprintf(w, "Upload:           skipped (%s)\n", s.SkipReason)
	} else {
		fmt.Fprintf(w, "Extraction dir:   %s\n", s.ExtractionDir)
		fmt.Fprintf(w, "Data pass:        %s\n", passLine(s.DataPass))
		fmt.Fprintf(w, "Image pass:       %s\n", passLine(s.ImagePass))
		if s.DataPass.Succeeded && s.ImagePass.Succeeded {
			fmt.Fprintf(w, "Total upload:     %s\n", FormatMinutes(s.TotalUploadMinutes))
		}
		if s.FailedImages > 0 {
			fmt.Fprintf(w, "Failed images:    %d\n", s.FailedImages)
		}
	}
	fmt.Fprintln(w, "==================================================")
}

func passLine(p PassSummary) string {
	switch {
	case !p.Ran:
		return "not run"
	case !p.Succeeded:
		return "failed"
	default:
		return FormatMinutes(p.DurationMinutes)
	}
}
