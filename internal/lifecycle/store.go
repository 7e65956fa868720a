package lifecycle

import (
	"context"

	"github.com/dyluth/kitbash/pkg/workshop"
)

// Store is the persistence and catalog collaborator used by the engine.
// Lookups signal absence with an error for which workshop.IsNotFound is true.
// *workshop.Client implements Store.
type Store interface {
	GetPlayer(ctx context.Context, playerID string) (*workshop.Player, error)
	GetCharacter(ctx context.Context, characterID string) (*workshop.Character, error)
	GetBuild(ctx context.Context, buildID string) (*workshop.Build, error)
	GetPendingBuild(ctx context.Context, playerID, characterID string) (*workshop.Build, error)
	CountValidBuilds(ctx context.Context, playerID, characterID string) (int, error)

	// CreatePendingBuild must atomically refuse a second pending build for the
	// same player and character with workshop.ErrPendingBuildExists.
	CreatePendingBuild(ctx context.Context, b *workshop.Build) error
	SaveBuild(ctx context.Context, b *workshop.Build) error
}

var _ Store = (*workshop.Client)(nil)
