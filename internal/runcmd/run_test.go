package runcmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/padelhub/catalogsync/internal/config"
)

// fakeRunner records invocations and fails the calls listed in results.
type fakeRunner struct {
	calls   []Command
	results []error
}

func (f *fakeRunner) Run(ctx context.Context, c Command, output io.Writer) error {
	f.calls = append(f.calls, c)
	if len(f.calls) <= len(f.results) {
		return f.results[len(f.calls)-1]
	}
	return nil
}

// fakeClock advances a fixed step on every read.
func fakeClock(step time.Duration) func() time.Time {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.Local)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

type fixture struct {
	cfg    *config.Config
	runner *fakeRunner
	out    *bytes.Buffer
	log    *slog.Logger
}

func newFixture(t *testing.T, withCreds bool) *fixture {
	t.Helper()
	project := t.TempDir()

	python := filepath.Join(project, "venv", "bin", "python")
	if err := os.MkdirAll(filepath.Dir(python), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(python, nil, 0755); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{ProjectDir: project}
	if withCreds {
		cfg.ShopifyDomain = "example.myshopify.com"
		cfg.ShopifyToken = "shpat_test"
	}

	out := &bytes.Buffer{}
	return &fixture{
		cfg:    cfg,
		runner: &fakeRunner{},
		out:    out,
		log:    slog.New(slog.NewTextHandler(out, nil)),
	}
}

func (f *fixture) addExtractionDir(t *testing.T, name string) string {
	t.Helper()
	dir := filepath.Join(f.cfg.ProjectDir, name)
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func (f *fixture) execute(t *testing.T) (*Summary, error) {
	t.Helper()
	o := &Orchestrator{Config: f.cfg, Runner: f.runner, Now: fakeClock(30 * time.Second)}
	return o.Execute(context.Background(), f.log, f.out, time.Now())
}

func TestExecuteFullRun(t *testing.T) {
	f := newFixture(t, true)
	dir := f.addExtractionDir(t, "Extracción_2025-03-14")
	report := "handle,image_url,error\na,u1,timeout\nb,u2,404\n"
	if err := os.WriteFile(filepath.Join(dir, "failed_images_report.csv"), []byte(report), 0644); err != nil {
		t.Fatal(err)
	}

	summary, err := f.execute(t)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(f.runner.calls) != 3 {
		t.Fatalf("Expected 3 subprocess calls, got %d", len(f.runner.calls))
	}

	scrape := f.runner.calls[0]
	if len(scrape.Args) != 1 || scrape.Args[0] != scrapeScript {
		t.Errorf("Unexpected scraper args: %v", scrape.Args)
	}
	if scrape.Dir != f.cfg.ProjectDir {
		t.Errorf("Scraper should run from the project dir, got %s", scrape.Dir)
	}
	if !strings.HasSuffix(scrape.Name, filepath.Join("venv", "bin", "python")) {
		t.Errorf("Scraper should use the virtualenv python, got %s", scrape.Name)
	}

	data := f.runner.calls[1]
	wantData := []string{uploadScript, "--skip-images", "--source-dir", dir}
	if strings.Join(data.Args, " ") != strings.Join(wantData, " ") {
		t.Errorf("Unexpected data pass args: %v", data.Args)
	}

	image := f.runner.calls[2]
	wantImage := []string{uploadScript, "--source-dir", dir}
	if strings.Join(image.Args, " ") != strings.Join(wantImage, " ") {
		t.Errorf("Unexpected image pass args: %v", image.Args)
	}

	if !summary.DataPass.Succeeded || !summary.ImagePass.Succeeded {
		t.Error("Expected both upload passes to succeed")
	}
	wantTotal := summary.DataPass.DurationMinutes + summary.ImagePass.DurationMinutes
	if summary.TotalUploadMinutes != wantTotal {
		t.Errorf("Expected total %f, got %f", wantTotal, summary.TotalUploadMinutes)
	}
	if summary.FailedImages != 2 {
		t.Errorf("Expected 2 failed images, got %d", summary.FailedImages)
	}
	if summary.ExtractionDir != dir {
		t.Errorf("Expected extraction dir %s, got %s", dir, summary.ExtractionDir)
	}
	if !strings.Contains(f.out.String(), "Proceso completado") {
		t.Error("Completion banner missing from output")
	}
}

func TestExecuteScraperFailureIsFatal(t *testing.T) {
	f := newFixture(t, true)
	f.addExtractionDir(t, "Extracción_2025-03-14")
	f.runner.results = []error{context.DeadlineExceeded}

	if _, err := f.execute(t); err == nil {
		t.Fatal("Expected error when the scraper fails")
	}
	if len(f.runner.calls) != 1 {
		t.Errorf("Upload must not run after a scraper failure, got %d calls", len(f.runner.calls))
	}
}

func TestExecuteSkipsUploadWithoutCredentials(t *testing.T) {
	f := newFixture(t, false)
	f.addExtractionDir(t, "Extracción_2025-03-14")

	summary, err := f.execute(t)
	if err != nil {
		t.Fatalf("Expected degraded success, got %v", err)
	}
	if len(f.runner.calls) != 1 {
		t.Errorf("Expected only the scraper to run, got %d calls", len(f.runner.calls))
	}
	if !summary.UploadSkipped {
		t.Error("Expected UploadSkipped to be set")
	}
	if !strings.Contains(f.out.String(), "Proceso completado") {
		t.Error("Completion banner must still print on the skip path")
	}
}

func TestExecuteMissingExtractionDirIsFatal(t *testing.T) {
	f := newFixture(t, true)

	if _, err := f.execute(t); err == nil {
		t.Fatal("Expected error when no extraction directory exists")
	}
	if len(f.runner.calls) != 1 {
		t.Errorf("No upload subprocess should be invoked, got %d calls", len(f.runner.calls))
	}
}

func TestExecuteDataPassFailureIsNonFatal(t *testing.T) {
	f := newFixture(t, true)
	f.addExtractionDir(t, "Extracción_2025-03-14")
	f.runner.results = []error{nil, context.DeadlineExceeded, nil}

	summary, err := f.execute(t)
	if err != nil {
		t.Fatalf("Data pass failure must not abort the run: %v", err)
	}
	if len(f.runner.calls) != 3 {
		t.Errorf("Image pass should still run, got %d calls", len(f.runner.calls))
	}
	if summary.DataPass.Succeeded {
		t.Error("Data pass should be recorded as failed")
	}
	if summary.DataPass.DurationMinutes != 0 {
		t.Errorf("Failed data pass must record zero duration, got %f", summary.DataPass.DurationMinutes)
	}
	if summary.TotalUploadMinutes != 0 {
		t.Error("Combined duration must not be reported when the data pass failed")
	}
	if !summary.ImagePass.Succeeded {
		t.Error("Image pass should have succeeded")
	}
}

func TestExecuteMissingVenvIsFatal(t *testing.T) {
	f := newFixture(t, true)
	if err := os.RemoveAll(filepath.Join(f.cfg.ProjectDir, "venv")); err != nil {
		t.Fatal(err)
	}

	if _, err := f.execute(t); err == nil {
		t.Fatal("Expected error when no virtualenv exists")
	}
	if len(f.runner.calls) != 0 {
		t.Errorf("No subprocess should run without a virtualenv, got %d calls", len(f.runner.calls))
	}
}

func TestExecuteDryRun(t *testing.T) {
	f := newFixture(t, true)
	f.addExtractionDir(t, "Extracción_2025-03-14")
	f.cfg.DryRun = true

	if _, err := f.execute(t); err != nil {
		t.Fatalf("Dry run failed: %v", err)
	}
	if len(f.runner.calls) != 0 {
		t.Errorf("Dry run must not execute subprocesses, got %d calls", len(f.runner.calls))
	}
	if !strings.Contains(f.out.String(), "dry-run: ") {
		t.Error("Dry run should log the would-be invocations")
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		minutes float64
		want    string
	}{
		{0, "0 min (0h 00m)"},
		{59.6, "60 min (1h 00m)"},
		{135, "135 min (2h 15m)"},
		{61.2, "61 min (1h 01m)"},
	}

	for _, tt := range tests {
		if got := FormatMinutes(tt.minutes); got != tt.want {
			t.Errorf("FormatMinutes(%f) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}
