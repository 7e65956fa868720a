package workshop

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Piece is a single part of a character model. Pieces are reference data owned
// by the catalog and are never mutated by the build engine.
type Piece struct {
	ID          string `json:"id"`
	Level       int    `json:"level"`                  // 1-4, drives the base score tier
	Special     bool   `json:"special,omitempty"`      // Bonus piece
	ComboVisual bool   `json:"combo_visual,omitempty"` // Participates in a visual combo
	Fake        bool   `json:"fake,omitempty"`         // Decoy, never part of the correct set
}

// Character is a catalog entry a player can assemble.
// Pieces keep their canonical order; that order is preserved through evaluation.
type Character struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Unlocked bool     `json:"unlocked"` // Unlocked by default for every player
	Pieces   []Piece  `json:"pieces"`
	Powers   []string `json:"powers"`
}

// Role is a player's permission level.
type Role string

const (
	// RoleUser is a regular player
	RoleUser Role = "user"

	// RoleAdmin can manage the catalog
	RoleAdmin Role = "admin"
)

// Player is the owner of builds. UnlockedCharacters lists the character IDs the
// player may build.
type Player struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Role               Role     `json:"role"`
	UnlockedCharacters []string `json:"unlocked_characters"`
}

// BuildState is the lifecycle state of a build.
// Builds move from pending to valid exactly once.
type BuildState string

const (
	// BuildStatePending marks a started build awaiting validation
	BuildStatePending BuildState = "pending"

	// BuildStateValid marks a validated, scored and immutable build
	BuildStateValid BuildState = "valid"
)

// Build is a player's attempt at assembling a character.
type Build struct {
	ID              string     `json:"id"`               // UUID
	PlayerID        string     `json:"player_id"`        // Owning player
	CharacterID     string     `json:"character_id"`     // Target character
	State           BuildState `json:"state"`            // pending or valid
	PiecesPlaced    []string   `json:"pieces_placed"`    // Raw submitted piece IDs
	ErrorCount      int        `json:"error_count"`      // Submitted IDs outside the correct set
	Score           int        `json:"score"`            // Final score, 0 while pending
	DurationSeconds float64    `json:"duration_seconds"` // Time taken, > 0 once valid
	CreatedAtMs     int64      `json:"created_at_ms"`    // Unix milliseconds
	ValidatedAtMs   int64      `json:"validated_at_ms"`  // Unix milliseconds, 0 while pending
}

// IsPending reports whether the build still awaits validation.
func (b *Build) IsPending() bool {
	return b.State == BuildStatePending
}

// Validate checks if the Piece has valid field values.
func (p *Piece) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("piece ID cannot be empty")
	}

	if p.Level < 1 || p.Level > 4 {
		return fmt.Errorf("piece '%s': invalid level %d (must be 1-4)", p.ID, p.Level)
	}

	return nil
}

// Validate checks the character and all of its pieces.
func (c *Character) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("character ID cannot be empty")
	}

	seen := make(map[string]bool, len(c.Pieces))
	for i := range c.Pieces {
		if err := c.Pieces[i].Validate(); err != nil {
			return fmt.Errorf("character '%s': %w", c.ID, err)
		}
		if seen[c.Pieces[i].ID] {
			return fmt.Errorf("character '%s': duplicate piece ID '%s'", c.ID, c.Pieces[i].ID)
		}
		seen[c.Pieces[i].ID] = true
	}

	return nil
}

// Validate checks if the Role is a valid enum value.
func (r Role) Validate() error {
	switch r {
	case RoleUser, RoleAdmin:
		return nil
	default:
		return fmt.Errorf("unknown role: %q", r)
	}
}

// Validate checks if the Player has valid field values.
func (p *Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player ID cannot be empty")
	}

	if err := p.Role.Validate(); err != nil {
		return fmt.Errorf("player '%s': %w", p.ID, err)
	}

	return nil
}

// Validate checks if the BuildState is a valid enum value.
func (s BuildState) Validate() error {
	switch s {
	case BuildStatePending, BuildStateValid:
		return nil
	default:
		return fmt.Errorf("unknown build state: %q", s)
	}
}

// Validate checks if the Build has valid field values.
// A valid build must carry a positive duration.
func (b *Build) Validate() error {
	if !isValidUUID(b.ID) {
		return fmt.Errorf("invalid build ID: not a valid UUID")
	}

	if b.PlayerID == "" {
		return fmt.Errorf("player_id cannot be empty")
	}

	if b.CharacterID == "" {
		return fmt.Errorf("character_id cannot be empty")
	}

	if err := b.State.Validate(); err != nil {
		return fmt.Errorf("invalid state: %w", err)
	}

	if b.State == BuildStateValid && (!(b.DurationSeconds > 0) || math.IsInf(b.DurationSeconds, 0)) {
		return fmt.Errorf("valid build must have a positive duration, got %v", b.DurationSeconds)
	}

	if b.ErrorCount < 0 {
		return fmt.Errorf("error_count must be >= 0, got %d", b.ErrorCount)
	}

	return nil
}

// isValidUUID checks if a string is a valid UUID format.
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
