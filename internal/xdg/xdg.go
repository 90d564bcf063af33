// Package xdg resolves XDG Base Directory paths for expensetracker.
// Configuration and preferences live under the config directory; the
// encrypted-file keyring backend keeps its items under the state directory.
package xdg

import (
	"os"
	"path/filepath"
)

// AppName is the directory name used under every XDG base directory.
const AppName = "expensetracker"

// ConfigDir returns the XDG config directory for expensetracker.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.config/expensetracker when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	return resolve("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the XDG state directory for expensetracker.
// It falls back to ~/.local/state/expensetracker when XDG_STATE_HOME is unset.
func StateDir() (string, error) {
	return resolve("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

// ConfigFile joins name onto ConfigDir.
func ConfigFile(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func resolve(envVar, homeFallback string) (string, error) {
	base := os.Getenv(envVar)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, homeFallback)
	}
	dir := filepath.Join(base, AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
