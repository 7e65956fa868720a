package lifecycle

import (
	"context"
	"slices"

	"github.com/dyluth/kitbash/pkg/workshop"
	"go.trai.ch/zerr"
)

// AccessGuard confirms a player has unlocked a character.
type AccessGuard struct {
	store Store
}

// NewAccessGuard creates a guard reading from store.
func NewAccessGuard(store Store) *AccessGuard {
	return &AccessGuard{store: store}
}

// VerifyAccess resolves the player and character and checks the character is
// in the player's unlocked set. Returns the character on success.
func (g *AccessGuard) VerifyAccess(ctx context.Context, playerID, characterID string) (*workshop.Character, error) {
	player, err := g.store.GetPlayer(ctx, playerID)
	if err != nil {
		if workshop.IsNotFound(err) {
			return nil, failure(ErrPlayerNotFound, "verify access", "player_id", playerID)
		}
		return nil, zerr.Wrap(err, "failed to load player")
	}

	ch, err := g.store.GetCharacter(ctx, characterID)
	if err != nil {
		if workshop.IsNotFound(err) {
			return nil, failure(ErrCharacterNotFound, "verify access", "character_id", characterID)
		}
		return nil, zerr.Wrap(err, "failed to load character")
	}

	if !slices.Contains(player.UnlockedCharacters, characterID) {
		return nil, failure(ErrAccessDenied, "verify access", "player_id", playerID, "character_id", characterID)
	}

	return ch, nil
}
