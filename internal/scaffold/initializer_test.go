package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dyluth/kitbash/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name      string
		force     bool
		setupFunc func(string)
	}{
		{
			name:      "fresh initialization",
			setupFunc: func(dir string) {},
		},
		{
			name:  "force initialization replaces existing config",
			force: true,
			setupFunc: func(dir string) {
				os.WriteFile(filepath.Join(dir, ConfigFile), []byte("old content"), 0644)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setupFunc(dir)

			require.NoError(t, Initialize(dir, tt.force))

			info, err := os.Stat(filepath.Join(dir, ConfigFile))
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

			cfg, err := config.Load(filepath.Join(dir, ConfigFile))
			require.NoError(t, err)
			assert.NotEmpty(t, cfg.Characters)
			assert.NotEmpty(t, cfg.Players)
		})
	}
}

func TestInitialize_TemplateHasDecoys(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(dir, false))

	cfg, err := config.Load(filepath.Join(dir, ConfigFile))
	require.NoError(t, err)

	for _, ch := range cfg.Characters {
		fakes := 0
		for _, p := range ch.Pieces {
			if p.Fake {
				fakes++
			}
		}
		assert.Positive(t, fakes, "character %s should include a decoy piece", ch.ID)
	}
}

func TestInitialize_MissingDirectory(t *testing.T) {
	err := Initialize(filepath.Join(t.TempDir(), "missing"), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write")
}
