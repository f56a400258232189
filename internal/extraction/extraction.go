// Package extraction locates and inspects the artifact directories the
// scraper produces. The orchestrator never writes into an extraction
// directory; everything here is read-only.
package extraction

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DirPrefix marks the directories the scraper creates, one per run.
const DirPrefix = "Extracción_"

// FailedImagesReport is the optional CSV the uploader leaves behind when
// individual image uploads fail. One header row, one data row per failure.
const FailedImagesReport = "failed_images_report.csv"

// ErrNoExtractionDir is returned when the project has no extraction
// directory at all.
var ErrNoExtractionDir = errors.New("no extraction directory found")

// Latest returns the most recently modified extraction directory under
// projectDir. Ties on modification time break toward the lexicographically
// larger name, which for date-stamped names is also the later one.
func Latest(projectDir string) (string, error) {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return "", fmt.Errorf("failed to scan project directory: %w", err)
	}

	var best os.FileInfo
	bestName := ""
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), DirPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return "", fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		if best == nil ||
			info.ModTime().After(best.ModTime()) ||
			(info.ModTime().Equal(best.ModTime()) && entry.Name() > bestName) {
			best = info
			bestName = entry.Name()
		}
	}

	if best == nil {
		return "", ErrNoExtractionDir
	}
	return filepath.Join(projectDir, bestName), nil
}

// CountFailedImages returns the number of data rows in the failed-images
// report inside dir. The second return reports whether the file exists at
// all: a missing report and an empty one are different outcomes.
func CountFailedImages(dir string) (int, bool, error) {
	path := filepath.Join(dir, FailedImagesReport)
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to open %s: %w", FailedImagesReport, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows := 0
	for {
		if _, err := reader.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, true, fmt.Errorf("failed to read %s: %w", FailedImagesReport, err)
		}
		rows++
	}

	// First row is the header.
	if rows > 0 {
		rows--
	}
	return rows, true, nil
}

// DataFiles lists the product CSVs inside an extraction directory, sorted by
// name. The failed-images report is not a data file and is excluded.
func DataFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan extraction directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(name), ".csv") || name == FailedImagesReport {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}
