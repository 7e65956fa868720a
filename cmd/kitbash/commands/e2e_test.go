package commands

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/dyluth/kitbash/internal/scoring"
	"github.com/dyluth/kitbash/pkg/workshop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validateJSON struct {
	Build           workshop.Build    `json:"build"`
	Breakdown       scoring.Breakdown `json:"breakdown"`
	FirstCompletion bool              `json:"first_completion"`
}

func startBuild(t *testing.T, player, character string) workshop.Build {
	t.Helper()

	res, err := runCLI(t, "start", "--player", player, "--character", character, "--output", "json")
	require.NoError(t, err, res.Errors)

	var b workshop.Build
	require.NoError(t, json.Unmarshal([]byte(res.Out), &b))
	return b
}

func TestE2E_SeedStartValidateBuilds(t *testing.T) {
	mr := setupRedis(t)
	path := writeConfig(t)

	res, err := runCLI(t, "seed", path, "--instance", "e2e")
	require.NoError(t, err, res.Errors)
	assert.Contains(t, res.Printed, "Seeded instance 'e2e'")
	assert.True(t, mr.Exists("kitbash:e2e:character:knight"))
	assert.True(t, mr.Exists("kitbash:e2e:player:p1"))

	t.Setenv(envInstance, "e2e")

	// First build
	first := startBuild(t, "p1", "knight")
	assert.Equal(t, workshop.BuildStatePending, first.State)

	_, err = runCLI(t, "start", "--player", "p1", "--character", "knight")
	require.Error(t, err)
	assert.Equal(t, "build already in progress", err.Error())

	res, err = runCLI(t, "validate", "-p", "p1", "-c", "knight", "--pieces", "helm,sword", "--duration", "42.5", "--output", "json")
	require.NoError(t, err, res.Errors)

	var outcome validateJSON
	require.NoError(t, json.Unmarshal([]byte(res.Out), &outcome))
	assert.Equal(t, first.ID, outcome.Build.ID)
	assert.Equal(t, workshop.BuildStateValid, outcome.Build.State)
	assert.Equal(t, 900, outcome.Build.Score)
	assert.Equal(t, 900, outcome.Breakdown.Total)
	assert.True(t, outcome.FirstCompletion)

	// Second build: one decoy, slow, not first
	second := startBuild(t, "p1", "knight")
	res, err = runCLI(t, "validate", "-p", "p1", "-c", "knight", "--pieces", "helm, teapot", "--duration", "90")
	require.NoError(t, err, res.Errors)
	assert.Contains(t, res.Printed, "Build validated: score 320")
	assert.Contains(t, res.Printed, second.ID)

	// Validating again without a pending build
	_, err = runCLI(t, "validate", "-p", "p1", "-c", "knight", "--pieces", "helm", "--duration", "5")
	require.Error(t, err)
	assert.Equal(t, "no build in progress", err.Error())

	// List
	res, err = runCLI(t, "builds", "--output", "jsonl", "--state", "valid")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(res.Out), "\n")
	require.Len(t, lines, 2)
	var listed workshop.Build
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &listed))
	assert.Equal(t, first.ID, listed.ID)

	res, err = runCLI(t, "builds")
	require.NoError(t, err)
	assert.Contains(t, res.Out, "2 builds found")

	// Get by short ID
	res, err = runCLI(t, "builds", second.ID[:8])
	require.NoError(t, err, res.Errors)
	var got workshop.Build
	require.NoError(t, json.Unmarshal([]byte(res.Out), &got))
	assert.Equal(t, 320, got.Score)

	// Wait on an already validated build
	res, err = runCLI(t, "watch", "--build", first.ID[:8], "--timeout", "5s")
	require.NoError(t, err, res.Errors)
	assert.Contains(t, res.Out, "Build Validated")
	assert.Contains(t, res.Out, "score=900")
}

func TestE2E_LockedCharacterAndUnlock(t *testing.T) {
	setupRedis(t)
	path := writeConfig(t)

	_, err := runCLI(t, "seed", path)
	require.NoError(t, err)

	res, err := runCLI(t, "start", "--player", "p1", "--character", "dragon")
	require.Error(t, err)
	assert.Equal(t, "character is locked", err.Error())
	assert.Contains(t, res.Errors, "kitbash unlock")

	_, err = runCLI(t, "unlock", "p1", "dragon")
	require.NoError(t, err)

	b := startBuild(t, "p1", "dragon")
	assert.Equal(t, "dragon", b.CharacterID)
}

func TestE2E_UnlockUnknownRecords(t *testing.T) {
	setupRedis(t)
	_, err := runCLI(t, "seed", writeConfig(t))
	require.NoError(t, err)

	_, err = runCLI(t, "unlock", "ghost", "knight")
	require.Error(t, err)
	assert.Equal(t, "player not found", err.Error())

	_, err = runCLI(t, "unlock", "p1", "unicorn")
	require.Error(t, err)
	assert.Equal(t, "character not found", err.Error())
}

func TestE2E_ValidateInputErrors(t *testing.T) {
	setupRedis(t)
	_, err := runCLI(t, "seed", writeConfig(t))
	require.NoError(t, err)
	startBuild(t, "p1", "knight")

	t.Run("missing pieces flag", func(t *testing.T) {
		_, err := runCLI(t, "validate", "-p", "p1", "-c", "knight", "--duration", "10")
		require.Error(t, err)
		assert.Equal(t, "invalid build data", err.Error())
	})

	t.Run("non-positive duration", func(t *testing.T) {
		_, err := runCLI(t, "validate", "-p", "p1", "-c", "knight", "--pieces", "helm")
		require.Error(t, err)
		assert.Equal(t, "invalid build data", err.Error())
	})

	t.Run("empty build is allowed", func(t *testing.T) {
		res, err := runCLI(t, "validate", "-p", "p1", "-c", "knight", "--pieces", "", "--duration", "10", "-o", "json")
		require.NoError(t, err, res.Errors)

		var outcome validateJSON
		require.NoError(t, json.Unmarshal([]byte(res.Out), &outcome))
		// completion + speed + flawless + first completion
		assert.Equal(t, 750, outcome.Build.Score)
	})
}

func TestE2E_InvalidFlags(t *testing.T) {
	setupRedis(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"builds output", []string{"builds", "--output", "xml"}, "invalid output format"},
		{"builds state", []string{"builds", "--state", "broken"}, "invalid state filter"},
		{"builds since", []string{"builds", "--since", "yesterday-ish"}, "invalid time filter"},
		{"watch output", []string{"watch", "--output", "xml"}, "invalid output format"},
		{"start output", []string{"start", "-p", "p1", "-c", "knight", "--output", "xml"}, "invalid output format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestE2E_SeedMissingConfig(t *testing.T) {
	setupRedis(t)

	res, err := runCLI(t, "seed", t.TempDir()+"/missing.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot load")
	assert.Contains(t, res.Errors, "kitbash init")
}

func TestE2E_BuildsUnknownShortID(t *testing.T) {
	setupRedis(t)

	_, err := runCLI(t, "builds", "abcdef12")
	require.Error(t, err)
	assert.Equal(t, "build with ID 'abcdef12' not found", err.Error())
}

func TestE2E_RedisUnavailable(t *testing.T) {
	t.Setenv(envRedisURL, "redis://127.0.0.1:1")
	t.Setenv(envInstance, "")

	_, err := runCLI(t, "builds")
	require.Error(t, err)
	assert.Equal(t, "Redis connection failed", err.Error())
}

func TestE2E_SeedUsesConfiguredInstance(t *testing.T) {
	mr := setupRedis(t)

	path := t.TempDir() + "/kitbash.yml"
	require.NoError(t, os.WriteFile(path, []byte("instance: arcade-9\n"+testConfig), 0644))

	res, err := runCLI(t, "seed", path)
	require.NoError(t, err, res.Errors)
	assert.True(t, mr.Exists("kitbash:arcade-9:character:knight"))

	// An explicit flag still wins
	_, err = runCLI(t, "seed", path, "--instance", "other")
	require.NoError(t, err)
	assert.True(t, mr.Exists("kitbash:other:character:knight"))
}
