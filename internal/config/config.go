// Package config resolves the project directory and the environment-driven
// settings that gate a run. Settings are carried as an explicit struct handed
// to each stage; nothing here mutates the process environment beyond what
// loading the project .env file adds.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// EnvFile is the optional key=value file read from the project root.
const EnvFile = ".env"

// Config holds everything a run needs to know up front.
type Config struct {
	// ProjectDir is the root for logs, .env, the virtualenv and the
	// extraction directories.
	ProjectDir string

	// VenvDir overrides virtualenv detection when non-empty (VENV_DIR).
	VenvDir string

	// ShopifyDomain and ShopifyToken gate the upload phase. Both must be
	// non-empty for the uploader to run.
	ShopifyDomain string
	ShopifyToken  string

	// DryRun logs the subprocess invocations without executing them.
	DryRun bool
}

// Load builds a Config rooted at projectDir. An empty projectDir falls back
// to PROJECT_DIR, then to the current working directory. The project .env
// file, if present, is loaded first; godotenv never overwrites variables that
// are already set, so the real environment wins over the file.
func Load(projectDir string) (*Config, error) {
	dir := projectDir
	if dir == "" {
		dir = os.Getenv("PROJECT_DIR")
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("cannot determine working directory: %w", err)
		}
		dir = wd
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve project directory %q: %w", dir, err)
	}

	if err := godotenv.Load(filepath.Join(abs, EnvFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", EnvFile, err)
	}

	cfg := &Config{
		ProjectDir:    abs,
		VenvDir:       os.Getenv("VENV_DIR"),
		ShopifyDomain: os.Getenv("SHOPIFY_DOMAIN"),
		ShopifyToken:  os.Getenv("SHOPIFY_ADMIN_TOKEN"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures the project directory actually exists.
func (c *Config) Validate() error {
	if c.ProjectDir == "" {
		return fmt.Errorf("project directory cannot be empty")
	}
	info, err := os.Stat(c.ProjectDir)
	if err != nil {
		return fmt.Errorf("project directory %s: %w", c.ProjectDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project directory %s is not a directory", c.ProjectDir)
	}
	return nil
}

// HasCredentials reports whether both Shopify variables are set. When false
// the upload phase is skipped entirely.
func (c *Config) HasCredentials() bool {
	return c.ShopifyDomain != "" && c.ShopifyToken != ""
}

// LogsDir is where per-run log files and summaries land.
func (c *Config) LogsDir() string {
	return filepath.Join(c.ProjectDir, "logs")
}
