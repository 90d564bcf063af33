package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsToLight(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "preferences.json"))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Light, got)
}

func TestSetAndLoad(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "preferences.json"))

	require.NoError(t, s.Set(Dark))
	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Dark, got)

	require.Error(t, s.Set(Theme("sepia")))
}

func TestToggle(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "preferences.json"))

	next, err := s.Toggle()
	require.NoError(t, err)
	assert.Equal(t, Dark, next)

	next, err = s.Toggle()
	require.NoError(t, err)
	assert.Equal(t, Light, next)

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Light, got)
}

func TestUnknownStoredValueReadsAsDefault(t *testing.T) {
	p := filepath.Join(t.TempDir(), "preferences.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"theme":"neon","other":"kept"}`), 0o600))
	s := NewFileStore(p)

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Light, got)

	require.NoError(t, s.Set(Dark))
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"other": "kept"`)
	assert.Contains(t, string(data), `"theme": "dark"`)
}

func TestParse(t *testing.T) {
	got, err := Parse(" DARK ")
	require.NoError(t, err)
	assert.Equal(t, Dark, got)

	_, err = Parse("blue")
	require.Error(t, err)
}
