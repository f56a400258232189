package runcmd

import (
	"fmt"
	"strings"

	"github.com/padelhub/catalogsync/internal/config"
	"github.com/padelhub/catalogsync/internal/duplicates"
	"github.com/padelhub/catalogsync/internal/extraction"
)

func executeDuplicates(cfg *config.Config, sourceDir string) error {
	dir := sourceDir
	if dir == "" {
		latest, err := extraction.Latest(cfg.ProjectDir)
		if err != nil {
			return err
		}
		dir = latest
	}

	found, err := duplicates.Scan(dir)
	if err != nil {
		return err
	}

	fmt.Printf("Scanned %s\n", dir)
	if len(found) == 0 {
		fmt.Println("No duplicate handles found.")
		return nil
	}

	fmt.Printf("Duplicate handles: %d\n\n", len(found))
	for _, d := range found {
		fmt.Printf("%s\n", d.Handle)
		for _, title := range d.Titles {
			fmt.Printf("  - %s\n", title)
		}
		fmt.Printf("  files: %s\n\n", strings.Join(d.Files, ", "))
	}
	return nil
}
