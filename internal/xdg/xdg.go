// Package xdg provides XDG Base Directory paths for Gridverse.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "gridverse"

// ConfigDir returns the XDG config directory for gridverse.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// DefaultConfigPath returns the path of the default config file, or empty
// string if no file exists there.
func DefaultConfigPath() string {
	path := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
