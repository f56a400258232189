// Package venv locates the project virtualenv and builds the environment the
// pipeline subprocesses run under. Activation is explicit: instead of mutating
// the orchestrator's own environment, Activate returns the env slice to hand
// to each subprocess.
package venv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Conventional virtualenv locations under the project root, probed in order.
var conventionalDirs = []string{"venv", ".venv"}

// ErrNoVenv is returned when no override is set and neither conventional
// directory exists.
var ErrNoVenv = errors.New("no virtualenv found: set VENV_DIR or create venv/ or .venv/")

// Resolve returns the virtualenv directory for the project. A non-empty
// override wins unconditionally; otherwise the first conventional directory
// that exists is used.
func Resolve(projectDir, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	for _, name := range conventionalDirs {
		dir := filepath.Join(projectDir, name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}
	return "", ErrNoVenv
}

// Python returns the interpreter path inside the virtualenv.
func Python(venvDir string) string {
	return filepath.Join(venvDir, "bin", "python")
}

// Activate builds the subprocess environment for the virtualenv: its bin
// directory is prepended to PATH, VIRTUAL_ENV is set, and PYTHONHOME is
// dropped. baseEnv is usually os.Environ(). The virtualenv must contain a
// python interpreter; a missing one fails the run.
func Activate(venvDir string, baseEnv []string) ([]string, error) {
	python := Python(venvDir)
	if _, err := os.Stat(python); err != nil {
		return nil, fmt.Errorf("virtualenv %s has no python interpreter: %w", venvDir, err)
	}

	bin := filepath.Join(venvDir, "bin")
	env := make([]string, 0, len(baseEnv)+2)
	pathSeen := false
	for _, kv := range baseEnv {
		switch {
		case strings.HasPrefix(kv, "PATH="):
			env = append(env, "PATH="+bin+string(os.PathListSeparator)+strings.TrimPrefix(kv, "PATH="))
			pathSeen = true
		case strings.HasPrefix(kv, "PYTHONHOME="), strings.HasPrefix(kv, "VIRTUAL_ENV="):
			// dropped
		default:
			env = append(env, kv)
		}
	}
	if !pathSeen {
		env = append(env, "PATH="+bin)
	}
	env = append(env, "VIRTUAL_ENV="+venvDir)
	return env, nil
}
