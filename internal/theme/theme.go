// Package theme persists the light/dark display preference.
package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-json"

	"expensetracker/cli/internal/xdg"
)

// Theme is the selected color scheme.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Default is used when nothing valid is stored.
const Default = Light

// Parse accepts "light" or "dark" case-insensitively.
func Parse(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	}
	return "", fmt.Errorf("unknown theme %q (want light or dark)", s)
}

// Opposite returns the other theme.
func (t Theme) Opposite() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

const preferenceKey = "theme"

// FileStore keeps preferences in a small JSON object on disk. Unrelated
// keys already present in the file are preserved on write.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultFileStore uses preferences.json in the XDG config dir.
func DefaultFileStore() (*FileStore, error) {
	p, err := xdg.ConfigFile("preferences.json")
	if err != nil {
		return nil, err
	}
	return NewFileStore(p), nil
}

// Load returns the stored theme, or Default when the file or key is
// missing or holds an unknown value.
func (s *FileStore) Load() (Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.read()
	if err != nil {
		return Default, err
	}
	t, err := Parse(prefs[preferenceKey])
	if err != nil {
		return Default, nil
	}
	return t, nil
}

// Set persists t.
func (s *FileStore) Set(t Theme) error {
	if _, err := Parse(string(t)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.read()
	if err != nil {
		return err
	}
	prefs[preferenceKey] = string(t)
	return s.write(prefs)
}

// Toggle flips between light and dark, persists and returns the new theme.
func (s *FileStore) Toggle() (Theme, error) {
	current, err := s.Load()
	if err != nil {
		return current, err
	}
	next := current.Opposite()
	if err := s.Set(next); err != nil {
		return current, err
	}
	return next, nil
}

func (s *FileStore) read() (map[string]string, error) {
	prefs := map[string]string{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return prefs, nil
	}
	if err := json.Unmarshal(data, &prefs); err != nil {
		// a corrupt preferences file is replaced on the next write
		return map[string]string{}, nil
	}
	return prefs, nil
}

func (s *FileStore) write(prefs map[string]string) error {
	b, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o600)
}
