package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/kitbash/pkg/workshop"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	idOne   = "11111111-e29b-41d4-a716-446655440000"
	idTwo   = "22222222-e29b-41d4-a716-446655440000"
	idThree = "33333333-e29b-41d4-a716-446655440000"
)

func setupTestClient(t *testing.T) *workshop.Client {
	mr := miniredis.RunT(t)

	client, err := workshop.NewClient(&redis.Options{Addr: mr.Addr()}, "test-instance")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client
}

// seedBuilds writes two valid builds and one pending build, created at 1000,
// 2000 and 3000 ms.
func seedBuilds(t *testing.T, client *workshop.Client) {
	ctx := context.Background()

	create := func(id, player, character string, createdAt int64) *workshop.Build {
		b := &workshop.Build{
			ID:           id,
			PlayerID:     player,
			CharacterID:  character,
			State:        workshop.BuildStatePending,
			PiecesPlaced: []string{},
			CreatedAtMs:  createdAt,
		}
		require.NoError(t, client.CreatePendingBuild(ctx, b))
		return b
	}

	validate := func(b *workshop.Build, score int) {
		b.State = workshop.BuildStateValid
		b.Score = score
		b.DurationSeconds = 42.5
		b.PiecesPlaced = []string{"helm"}
		b.ValidatedAtMs = b.CreatedAtMs + 500
		require.NoError(t, client.SaveBuild(ctx, b))
	}

	validate(create(idTwo, "alice", "robot", 2000), 700)
	validate(create(idOne, "alice", "knight", 1000), 900)
	create(idThree, "bob", "knight", 3000)
}

func TestCollectBuilds(t *testing.T) {
	client := setupTestClient(t)
	seedBuilds(t, client)
	ctx := context.Background()

	tests := []struct {
		name    string
		filters *FilterCriteria
		want    []string
	}{
		{"no filters", nil, []string{idOne, idTwo, idThree}},
		{"by player", &FilterCriteria{PlayerID: "alice"}, []string{idOne, idTwo}},
		{"by character", &FilterCriteria{CharacterID: "knight"}, []string{idOne, idThree}},
		{"pending only", &FilterCriteria{State: workshop.BuildStatePending}, []string{idThree}},
		{"valid only", &FilterCriteria{State: workshop.BuildStateValid}, []string{idOne, idTwo}},
		{"since", &FilterCriteria{SinceTimestampMs: 2000}, []string{idTwo, idThree}},
		{"until", &FilterCriteria{UntilTimestampMs: 2000}, []string{idOne, idTwo}},
		{"by character glob", &FilterCriteria{CharacterID: "r*"}, []string{idTwo}},
		{"malformed glob matches nothing", &FilterCriteria{CharacterID: "[kn"}, []string{}},
		{"combined", &FilterCriteria{PlayerID: "alice", CharacterID: "knight"}, []string{idOne}},
		{"no match", &FilterCriteria{PlayerID: "carol"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builds, err := CollectBuilds(ctx, client, tt.filters)
			require.NoError(t, err)

			ids := make([]string, 0, len(builds))
			for _, b := range builds {
				ids = append(ids, b.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestListBuilds_Table(t *testing.T) {
	client := setupTestClient(t)
	seedBuilds(t, client)

	var buf bytes.Buffer
	err := ListBuilds(context.Background(), client, "test-instance", OutputFormatDefault, nil, &buf)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Builds for instance 'test-instance'")
	assert.Contains(t, output, "11111111")
	assert.Contains(t, output, "900")
	assert.Contains(t, output, "42.5s")
	assert.Contains(t, output, "3 builds found")

	// The pending build has no score yet.
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, "33333333") {
			assert.Contains(t, line, "pending")
			assert.NotContains(t, line, "0.0s")
		}
	}
}

func TestListBuilds_Empty(t *testing.T) {
	client := setupTestClient(t)

	var buf bytes.Buffer
	err := ListBuilds(context.Background(), client, "test-instance", OutputFormatDefault, nil, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No builds found for instance 'test-instance'")
}

func TestListBuilds_JSONL(t *testing.T) {
	client := setupTestClient(t)
	seedBuilds(t, client)

	var buf bytes.Buffer
	err := ListBuilds(context.Background(), client, "test-instance", OutputFormatJSONL,
		&FilterCriteria{State: workshop.BuildStateValid}, &buf)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first workshop.Build
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, idOne, first.ID)
	assert.Equal(t, 900, first.Score)
	assert.Equal(t, []string{"helm"}, first.PiecesPlaced)
}

func TestListBuilds_UnknownFormat(t *testing.T) {
	client := setupTestClient(t)

	err := ListBuilds(context.Background(), client, "test-instance", OutputFormat("xml"), nil, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format: xml")
}

func TestGetBuild(t *testing.T) {
	client := setupTestClient(t)
	seedBuilds(t, client)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, GetBuild(ctx, client, idOne, &buf))

		var b workshop.Build
		require.NoError(t, json.Unmarshal(buf.Bytes(), &b))
		assert.Equal(t, "alice", b.PlayerID)
		assert.Equal(t, workshop.BuildStateValid, b.State)
		assert.True(t, strings.HasSuffix(buf.String(), "}\n"))
	})

	t.Run("invalid id", func(t *testing.T) {
		err := GetBuild(ctx, client, "not-a-uuid", &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid build ID format")
	})

	t.Run("not found", func(t *testing.T) {
		err := GetBuild(ctx, client, "99999999-e29b-41d4-a716-446655440000", &bytes.Buffer{})
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})
}

func TestFormatTimestamp(t *testing.T) {
	now := time.Now()

	assert.Equal(t, "-", formatTimestamp(0))
	assert.Equal(t, "5m ago", formatTimestamp(now.Add(-5*time.Minute-time.Second).UnixMilli()))
	assert.Equal(t, "3h ago", formatTimestamp(now.Add(-3*time.Hour-time.Minute).UnixMilli()))
	assert.Equal(t, "2d ago", formatTimestamp(now.Add(-49*time.Hour).UnixMilli()))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "-", truncate("", 5))
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "12345678", formatID("12345678-aaaa"))
}
