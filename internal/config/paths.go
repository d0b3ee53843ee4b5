// Package config provides configuration management for minidrive.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppDir is the configuration directory name under the user's config root.
const AppDir = "minidrive"

// ConfigDirectory returns the directory holding the config and session files.
//
// Locations:
//   - Windows: %APPDATA%\minidrive
//   - Unix: ~/.config/minidrive
func ConfigDirectory() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppDir)
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", AppDir)
	}
	return filepath.Join(os.TempDir(), AppDir)
}

// DefaultConfigPath returns the default location of the INI config file.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDirectory(), "config")
}

// DefaultSessionPath returns the default location of the persisted session cookie.
func DefaultSessionPath() string {
	return filepath.Join(ConfigDirectory(), "session")
}

// EnsureConfigDirectory creates the config directory if it doesn't exist.
// Uses 0700 since the directory holds the session cookie.
func EnsureConfigDirectory() error {
	return os.MkdirAll(ConfigDirectory(), 0700)
}
