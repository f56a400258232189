package runcmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/padelhub/catalogsync/internal/runlog"
	"gopkg.in/yaml.v3"
)

// PassSummary records one upload invocation. DurationMinutes stays zero when
// the pass failed; only successful passes contribute to the total.
type PassSummary struct {
	Ran             bool    `yaml:"ran"`
	Succeeded       bool    `yaml:"succeeded"`
	DurationMinutes float64 `yaml:"duration_minutes"`
}

// Summary is the machine-readable record of one run, written next to the run
// log and consumed by the report command.
type Summary struct {
	StartedAt          time.Time   `yaml:"started_at"`
	FinishedAt         time.Time   `yaml:"finished_at"`
	LogFile            string      `yaml:"log_file,omitempty"`
	ScrapeMinutes      float64     `yaml:"scrape_minutes"`
	ExtractionDir      string      `yaml:"extraction_dir,omitempty"`
	UploadSkipped      bool        `yaml:"upload_skipped"`
	SkipReason         string      `yaml:"skip_reason,omitempty"`
	DataPass           PassSummary `yaml:"data_pass"`
	ImagePass          PassSummary `yaml:"image_pass"`
	TotalUploadMinutes float64     `yaml:"total_upload_minutes"`
	FailedImages       int         `yaml:"failed_images"`
}

const summaryPrefix = "run_"

// Save writes the summary as run_<timestamp>.yaml under logsDir and returns
// the path.
func (s *Summary) Save(logsDir string) (string, error) {
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create logs directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal run summary: %w", err)
	}

	path := filepath.Join(logsDir, fmt.Sprintf("%s%s.yaml", summaryPrefix, s.StartedAt.Format(runlog.TimestampLayout)))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write run summary: %w", err)
	}
	return path, nil
}

// LoadLatest reads the most recent run summary under logsDir. The timestamped
// names sort chronologically, so the lexicographically largest file is the
// latest run.
func LoadLatest(logsDir string) (*Summary, error) {
	entries, err := os.ReadDir(logsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan logs directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, summaryPrefix) || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no run summaries found in %s", logsDir)
	}
	sort.Strings(names)

	path := filepath.Join(logsDir, names[len(names)-1])
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var summary Summary
	if err := yaml.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &summary, nil
}
