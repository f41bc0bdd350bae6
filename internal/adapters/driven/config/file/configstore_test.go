package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_EmptyDirectory(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())

	// Missing file means empty config, not an error.
	_, ok := store.Get("anything")
	assert.False(t, ok)
}

func TestConfigStore_SetPersistsImmediately(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("data.dir", "/tmp/anclora"))
	require.NoError(t, store.Set("watch.debounce_ms", int64(500)))

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/anclora", reloaded.GetString("data.dir"))
	assert.Equal(t, 500, reloaded.GetInt("watch.debounce_ms"))
}

func TestConfigStore_LoadFlattensNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := `
verbose = true

[relocation]
structural_threshold = 0.9
context_threshold = 0.65
context_gap = 400

[watch]
debounce_ms = 750
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.True(t, store.GetBool("verbose"))
	assert.Equal(t, 0.9, store.GetFloat("relocation.structural_threshold"))
	assert.Equal(t, 0.65, store.GetFloat("relocation.context_threshold"))
	assert.Equal(t, 400, store.GetInt("relocation.context_gap"))
	assert.Equal(t, 750, store.GetInt("watch.debounce_ms"))
}

func TestConfigStore_TypeMismatchesFallBackToZeroValues(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("key", "texto"))

	assert.Equal(t, "texto", store.GetString("key"))
	assert.Equal(t, 0, store.GetInt("key"))
	assert.Equal(t, 0.0, store.GetFloat("key"))
	assert.False(t, store.GetBool("key"))
	assert.Equal(t, "", store.GetString("missing"))
}

func TestConfigStore_GetFloatAcceptsIntegers(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("n", int64(2)))

	assert.Equal(t, 2.0, store.GetFloat("n"))
}
