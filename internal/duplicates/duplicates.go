// Package duplicates scans the extraction CSVs for URL handles that resolve
// to more than one product. Duplicate handles collapse into a single Shopify
// product on upload, so catching them before the uploader runs saves a bad
// sync.
package duplicates

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/padelhub/catalogsync/internal/extraction"
)

// Column names in the scraper's Shopify-format CSVs.
const (
	handleColumn = "URL handle"
	titleColumn  = "Title"
)

// Duplicate is a handle claimed by more than one product: it appears in
// several data files, or under several distinct titles.
type Duplicate struct {
	Handle string
	Titles []string
	Files  []string
}

// Scan reads every data CSV in the extraction directory and returns the
// duplicate handles, sorted. Rows without a handle are skipped, matching the
// uploader's behavior.
func Scan(dir string) ([]Duplicate, error) {
	files, err := extraction.DataFiles(dir)
	if err != nil {
		return nil, err
	}

	titles := make(map[string]map[string]struct{})
	sources := make(map[string]map[string]struct{})

	for _, file := range files {
		if err := scanFile(file, titles, sources); err != nil {
			return nil, err
		}
	}

	var duplicates []Duplicate
	for handle := range titles {
		if len(titles[handle]) <= 1 && len(sources[handle]) <= 1 {
			continue
		}
		duplicates = append(duplicates, Duplicate{
			Handle: handle,
			Titles: sortedKeys(titles[handle]),
			Files:  sortedKeys(sources[handle]),
		})
	}
	sort.Slice(duplicates, func(i, j int) bool { return duplicates[i].Handle < duplicates[j].Handle })
	return duplicates, nil
}

func scanFile(path string, titles, sources map[string]map[string]struct{}) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	handleIdx, titleIdx := -1, -1
	for i, name := range header {
		switch name {
		case handleColumn:
			handleIdx = i
		case titleColumn:
			titleIdx = i
		}
	}
	if handleIdx < 0 {
		return fmt.Errorf("%s has no %q column", filepath.Base(path), handleColumn)
	}

	base := filepath.Base(path)
	for {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if handleIdx >= len(row) || row[handleIdx] == "" {
			continue
		}
		handle := row[handleIdx]

		if sources[handle] == nil {
			sources[handle] = make(map[string]struct{})
			titles[handle] = make(map[string]struct{})
		}
		sources[handle][base] = struct{}{}
		// Variant rows leave Title empty; only the first row of a product
		// group carries it.
		if titleIdx >= 0 && titleIdx < len(row) && row[titleIdx] != "" {
			titles[handle][row[titleIdx]] = struct{}{}
		}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
