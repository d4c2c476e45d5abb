// Package envfile loads API keys and BLOGLOG_* settings from .env files.
// Variables already present in the environment always win.
package envfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Load applies the variables in path that are not already set.
// A missing file is not an error.
func Load(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// LoadAll loads, in priority order, ./.env.local, ./.env and <configDir>/env.
// The first file to define a variable wins. Failures are collected and
// returned together; every file is still attempted.
func LoadAll(configDir string) error {
	paths := []string{".env.local", ".env"}
	if configDir != "" {
		paths = append(paths, filepath.Join(configDir, "env"))
	}

	var errs []error
	for _, path := range paths {
		if err := Load(path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
