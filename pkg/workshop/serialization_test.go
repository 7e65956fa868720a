package workshop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashToBuild_EmptyPiecesBecomeEmptySlice(t *testing.T) {
	hash := map[string]string{
		"id":               "b1",
		"player_id":        "p1",
		"character_id":     "knight",
		"state":            "pending",
		"pieces_placed":    "",
		"error_count":      "0",
		"score":            "0",
		"duration_seconds": "0",
		"created_at_ms":    "1700000000000",
	}

	b, err := HashToBuild(hash)
	require.NoError(t, err)
	assert.NotNil(t, b.PiecesPlaced)
	assert.Empty(t, b.PiecesPlaced)
	assert.Equal(t, BuildStatePending, b.State)
	assert.Equal(t, int64(1700000000000), b.CreatedAtMs)
	assert.Zero(t, b.ValidatedAtMs)
}

func TestHashToBuild_RejectsMalformedNumbers(t *testing.T) {
	base := map[string]string{
		"error_count":      "0",
		"score":            "0",
		"duration_seconds": "1.5",
	}

	for _, field := range []string{"error_count", "score", "duration_seconds"} {
		t.Run(field, func(t *testing.T) {
			hash := make(map[string]string, len(base))
			for k, v := range base {
				hash[k] = v
			}
			hash[field] = "not-a-number"

			_, err := HashToBuild(hash)
			require.Error(t, err)
			assert.Contains(t, err.Error(), field)
		})
	}
}

func TestBuildToHash_PreservesFractionalDuration(t *testing.T) {
	b := validBuild()
	b.State = BuildStateValid
	b.DurationSeconds = 59.75
	b.PiecesPlaced = []string{"helm", "x"}

	hash, err := BuildToHash(b)
	require.NoError(t, err)
	assert.Equal(t, "59.75", hash["duration_seconds"])
	assert.Equal(t, `["helm","x"]`, hash["pieces_placed"])
}

func TestHashToCharacter_KeepsPieceOrderAndFlags(t *testing.T) {
	hash := map[string]string{
		"id":       "knight",
		"name":     "Knight",
		"unlocked": "true",
		"pieces":   `[{"id":"sword","level":3,"special":true},{"id":"helm","level":1,"combo_visual":true},{"id":"decoy","level":1,"fake":true}]`,
	}

	ch, err := HashToCharacter(hash)
	require.NoError(t, err)
	require.Len(t, ch.Pieces, 3)
	assert.Equal(t, "sword", ch.Pieces[0].ID)
	assert.True(t, ch.Pieces[0].Special)
	assert.True(t, ch.Pieces[1].ComboVisual)
	assert.True(t, ch.Pieces[2].Fake)
	assert.True(t, ch.Unlocked)
	assert.NotNil(t, ch.Powers)
}
