package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckExisting(t *testing.T) {
	t.Run("no existing config", func(t *testing.T) {
		assert.NoError(t, CheckExisting(t.TempDir()))
	})

	t.Run("existing config", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("version: '1.0'"), 0644))

		err := CheckExisting(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "workshop already initialized")
		assert.Contains(t, err.Error(), "kitbash init --force")
	})

	t.Run("unrelated files are ignored", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yml"), []byte("x"), 0644))
		assert.NoError(t, CheckExisting(dir))
	})
}
