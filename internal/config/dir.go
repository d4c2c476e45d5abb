// Package config resolves bloglog's user configuration directory and the
// environment-driven settings shared by the CLI and the web server.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName names the per-user configuration directory.
const appName = "bloglog"

// Dir returns the bloglog configuration directory.
//
// Resolution:
//   - $BLOGLOG_CONFIG_HOME if set
//   - $XDG_CONFIG_HOME/bloglog if set
//   - %AppData%/bloglog on Windows
//   - ~/.config/bloglog otherwise
//
// Returns "" when no home directory can be determined.
func Dir() string {
	if dir := os.Getenv("BLOGLOG_CONFIG_HOME"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}
