package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	p := LoadFrom(path)
	assert.Equal(t, 0, p.Int(KeyNextStartLabel, 0))
	assert.Equal(t, "", p.String(KeyLastMapLabel))

	p.SetInt(KeyNextStartLabel, 140)
	p.SetString(KeyLastMapLabel, "12")
	require.NoError(t, p.Save())

	again := LoadFrom(path)
	assert.Equal(t, 140, again.Int(KeyNextStartLabel, 0))
	assert.Equal(t, "12", again.String(KeyLastMapLabel))
	assert.Equal(t, path, again.Path())
}

func TestCorruptFileYieldsEmptyPrefs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	p := LoadFrom(path)
	assert.Equal(t, 7, p.Int(KeyNextStartLabel, 7))
}
