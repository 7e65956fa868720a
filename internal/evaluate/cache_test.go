package evaluate

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dyluth/kitbash/pkg/workshop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingSupplier(ch *workshop.Character, calls *atomic.Int32) CharacterSupplier {
	return func() (*workshop.Character, error) {
		calls.Add(1)
		return ch, nil
	}
}

func TestCache_ComputesOnce(t *testing.T) {
	cache := NewCache()
	ch := &workshop.Character{ID: "knight", Pieces: []workshop.Piece{
		{ID: "helm", Level: 1},
		{ID: "decoy", Level: 1, Fake: true},
	}}
	var calls atomic.Int32

	first, err := cache.CorrectPieces("knight", countingSupplier(ch, &calls))
	require.NoError(t, err)
	second, err := cache.CorrectPieces("knight", countingSupplier(ch, &calls))
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, []string{"helm"}, ids(first))
	require.Len(t, second, 1)
	assert.Same(t, &first[0], &second[0], "second lookup must return the cached slice")
}

func TestCache_InvalidateForcesRecompute(t *testing.T) {
	cache := NewCache()
	ch := &workshop.Character{ID: "knight", Pieces: pieces("helm")}
	var calls atomic.Int32

	_, err := cache.CorrectPieces("knight", countingSupplier(ch, &calls))
	require.NoError(t, err)

	cache.Invalidate("knight")
	assert.Zero(t, cache.Len())

	ch.Pieces = pieces("helm", "sword")
	got, err := cache.CorrectPieces("knight", countingSupplier(ch, &calls))
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []string{"helm", "sword"}, ids(got))
}

func TestCache_InvalidateMissingKey(t *testing.T) {
	cache := NewCache()
	assert.NotPanics(t, func() { cache.Invalidate("nobody") })
}

func TestCache_SupplierErrorNotCached(t *testing.T) {
	cache := NewCache()
	boom := errors.New("catalog unavailable")

	_, err := cache.CorrectPieces("knight", func() (*workshop.Character, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, cache.Len())

	var calls atomic.Int32
	got, err := cache.CorrectPieces("knight", countingSupplier(&workshop.Character{ID: "knight", Pieces: pieces("a")}, &calls))
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCache_ConcurrentSameKeySharesComputation(t *testing.T) {
	cache := NewCache()
	release := make(chan struct{})
	var calls atomic.Int32

	supplier := func() (*workshop.Character, error) {
		calls.Add(1)
		<-release
		return &workshop.Character{ID: "knight", Pieces: pieces("a", "b")}, nil
	}

	const readers = 16
	var wg sync.WaitGroup
	results := make([][]workshop.Piece, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := cache.CorrectPieces("knight", supplier)
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}

	// Let the readers pile up on the in-flight computation.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, []string{"a", "b"}, ids(r))
	}
}

func TestCache_DistinctKeysDoNotBlock(t *testing.T) {
	cache := NewCache()
	blocked := make(chan struct{})
	defer close(blocked)

	go func() {
		_, _ = cache.CorrectPieces("slow", func() (*workshop.Character, error) {
			<-blocked
			return &workshop.Character{ID: "slow"}, nil
		})
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := cache.CorrectPieces("fast", func() (*workshop.Character, error) {
			return &workshop.Character{ID: "fast", Pieces: pieces("a")}, nil
		})
		assert.NoError(t, err)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lookup for a different character blocked on an in-flight computation")
	}
}
