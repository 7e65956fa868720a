package evaluate

import (
	"sync"

	"github.com/dyluth/kitbash/pkg/workshop"
	"golang.org/x/sync/singleflight"
)

// CharacterSupplier yields the character whose correct pieces should be cached.
type CharacterSupplier func() (*workshop.Character, error)

// Cache maps character IDs to their correct (non-decoy) pieces.
//
// Lookups for different characters never block each other. Concurrent first
// lookups for the same character share a single supplier call. Returned slices
// are shared between callers and must not be modified.
type Cache struct {
	entries sync.Map // characterID -> []workshop.Piece
	group   singleflight.Group
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// CorrectPieces returns the cached correct pieces for characterID, calling
// supplier to compute them on a miss. Supplier errors are returned and nothing
// is cached.
func (c *Cache) CorrectPieces(characterID string, supplier CharacterSupplier) ([]workshop.Piece, error) {
	if v, ok := c.entries.Load(characterID); ok {
		return v.([]workshop.Piece), nil
	}

	v, err, _ := c.group.Do(characterID, func() (any, error) {
		if v, ok := c.entries.Load(characterID); ok {
			return v, nil
		}

		ch, err := supplier()
		if err != nil {
			return nil, err
		}

		pieces := CorrectPieces(ch)
		c.entries.Store(characterID, pieces)
		return pieces, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]workshop.Piece), nil
}

// Invalidate drops the entry for characterID. Safe to call when no entry exists.
func (c *Cache) Invalidate(characterID string) {
	c.group.Forget(characterID)
	c.entries.Delete(characterID)
}

// Len returns the number of cached characters.
func (c *Cache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
