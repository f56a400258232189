// Package runlog opens the per-run log file and the sink that duplicates all
// run output to both the console and that file. One log file is created per
// invocation, named with the run's start timestamp, and only ever appended to.
package runlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// TimestampLayout names log files and summaries after the run start.
const TimestampLayout = "2006-01-02_15-04-05"

// Run is an open run log: a file plus the fan-out writer over it.
type Run struct {
	Path   string
	Logger *slog.Logger

	file *os.File
	sink io.Writer
}

// Open creates logs/scraper_<timestamp>.log under logsDir and returns a Run
// whose sink duplicates writes to console and file. The directory is created
// if needed.
func Open(logsDir string, start time.Time, console io.Writer) (*Run, error) {
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	path := filepath.Join(logsDir, fmt.Sprintf("scraper_%s.log", start.Format(TimestampLayout)))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}

	sink := io.MultiWriter(console, file)
	logger := slog.New(slog.NewTextHandler(sink, nil))

	return &Run{
		Path:   path,
		Logger: logger,
		file:   file,
		sink:   sink,
	}, nil
}

// Writer returns the duplicated sink. Subprocess stdout/stderr go here so the
// log file captures everything the run printed.
func (r *Run) Writer() io.Writer {
	return r.sink
}

func (r *Run) Close() error {
	return r.file.Close()
}
