// Package catalog loads characters and players from kitbash.yml into the store.
package catalog

import (
	"context"
	"fmt"
	"log"
	"slices"

	"github.com/dyluth/kitbash/internal/config"
	"github.com/dyluth/kitbash/pkg/workshop"
)

// Writer is the subset of the workshop client used for seeding.
type Writer interface {
	PutCharacter(ctx context.Context, ch *workshop.Character) error
	PutPlayer(ctx context.Context, p *workshop.Player) error
}

// Summary reports what Seed wrote.
type Summary struct {
	Characters int
	Players    int
}

// Seed writes every configured character, then every player. Characters marked
// unlocked are added to each player's unlocked set. Existing records with the
// same IDs are replaced; builds are never touched.
func Seed(ctx context.Context, w Writer, cfg *config.KitbashConfig) (Summary, error) {
	var summary Summary
	var openToAll []string

	for i := range cfg.Characters {
		ch := cfg.Characters[i].Character()
		if err := w.PutCharacter(ctx, ch); err != nil {
			return summary, fmt.Errorf("failed to seed character '%s': %w", ch.ID, err)
		}
		if ch.Unlocked {
			openToAll = append(openToAll, ch.ID)
		}
		summary.Characters++
	}

	for _, pc := range cfg.Players {
		p := PlayerFromConfig(pc, openToAll)
		if err := w.PutPlayer(ctx, p); err != nil {
			return summary, fmt.Errorf("failed to seed player '%s': %w", p.ID, err)
		}
		summary.Players++
	}

	log.Printf("[Catalog] Seeded %d characters and %d players", summary.Characters, summary.Players)
	return summary, nil
}

// PlayerFromConfig builds the player record, merging in characters that are
// unlocked for everyone. The unlocked list is sorted and de-duplicated.
func PlayerFromConfig(pc config.PlayerConfig, openToAll []string) *workshop.Player {
	unlocked := make([]string, 0, len(pc.Unlocked)+len(openToAll))
	unlocked = append(unlocked, pc.Unlocked...)
	unlocked = append(unlocked, openToAll...)
	slices.Sort(unlocked)
	unlocked = slices.Compact(unlocked)

	role := workshop.Role(pc.Role)
	if role == "" {
		role = workshop.RoleUser
	}

	return &workshop.Player{
		ID:                 pc.ID,
		Name:               pc.Name,
		Role:               role,
		UnlockedCharacters: unlocked,
	}
}
