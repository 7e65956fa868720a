package workshop

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Serialization helpers for converting between Go structs and Redis hashes
//
// Scalar fields map to individual hash fields. Slices (pieces, powers, placed
// piece IDs) are JSON-encoded into a single field.

// BuildToHash converts a Build to a Redis hash.
func BuildToHash(b *Build) (map[string]interface{}, error) {
	piecesJSON, err := json.Marshal(b.PiecesPlaced)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pieces_placed: %w", err)
	}

	hash := map[string]interface{}{
		"id":               b.ID,
		"player_id":        b.PlayerID,
		"character_id":     b.CharacterID,
		"state":            string(b.State),
		"pieces_placed":    string(piecesJSON),
		"error_count":      b.ErrorCount,
		"score":            b.Score,
		"duration_seconds": strconv.FormatFloat(b.DurationSeconds, 'f', -1, 64),
		"created_at_ms":    b.CreatedAtMs,
		"validated_at_ms":  b.ValidatedAtMs,
	}

	return hash, nil
}

// HashToBuild converts a Redis hash to a Build.
func HashToBuild(hash map[string]string) (*Build, error) {
	var pieces []string
	if piecesJSON := hash["pieces_placed"]; piecesJSON != "" {
		if err := json.Unmarshal([]byte(piecesJSON), &pieces); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pieces_placed: %w", err)
		}
	}
	if pieces == nil {
		pieces = []string{}
	}

	errorCount, err := strconv.Atoi(hash["error_count"])
	if err != nil {
		return nil, fmt.Errorf("invalid error_count field: %w", err)
	}

	score, err := strconv.Atoi(hash["score"])
	if err != nil {
		return nil, fmt.Errorf("invalid score field: %w", err)
	}

	duration, err := strconv.ParseFloat(hash["duration_seconds"], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid duration_seconds field: %w", err)
	}

	createdAtMs, _ := strconv.ParseInt(hash["created_at_ms"], 10, 64)
	validatedAtMs, _ := strconv.ParseInt(hash["validated_at_ms"], 10, 64)

	return &Build{
		ID:              hash["id"],
		PlayerID:        hash["player_id"],
		CharacterID:     hash["character_id"],
		State:           BuildState(hash["state"]),
		PiecesPlaced:    pieces,
		ErrorCount:      errorCount,
		Score:           score,
		DurationSeconds: duration,
		CreatedAtMs:     createdAtMs,
		ValidatedAtMs:   validatedAtMs,
	}, nil
}

// CharacterToHash converts a Character to a Redis hash.
func CharacterToHash(c *Character) (map[string]interface{}, error) {
	piecesJSON, err := json.Marshal(c.Pieces)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pieces: %w", err)
	}

	powersJSON, err := json.Marshal(c.Powers)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal powers: %w", err)
	}

	return map[string]interface{}{
		"id":       c.ID,
		"name":     c.Name,
		"unlocked": strconv.FormatBool(c.Unlocked),
		"pieces":   string(piecesJSON),
		"powers":   string(powersJSON),
	}, nil
}

// HashToCharacter converts a Redis hash to a Character.
func HashToCharacter(hash map[string]string) (*Character, error) {
	var pieces []Piece
	if piecesJSON := hash["pieces"]; piecesJSON != "" {
		if err := json.Unmarshal([]byte(piecesJSON), &pieces); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pieces: %w", err)
		}
	}

	var powers []string
	if powersJSON := hash["powers"]; powersJSON != "" {
		if err := json.Unmarshal([]byte(powersJSON), &powers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal powers: %w", err)
		}
	}

	if pieces == nil {
		pieces = []Piece{}
	}
	if powers == nil {
		powers = []string{}
	}

	unlocked, _ := strconv.ParseBool(hash["unlocked"])

	return &Character{
		ID:       hash["id"],
		Name:     hash["name"],
		Unlocked: unlocked,
		Pieces:   pieces,
		Powers:   powers,
	}, nil
}

// PlayerToHash converts a Player to a Redis hash.
// Unlocked characters live in a separate set and are not part of the hash.
func PlayerToHash(p *Player) map[string]interface{} {
	return map[string]interface{}{
		"id":   p.ID,
		"name": p.Name,
		"role": string(p.Role),
	}
}

// HashToPlayer converts a Redis hash and the unlocked set members to a Player.
func HashToPlayer(hash map[string]string, unlocked []string) *Player {
	if unlocked == nil {
		unlocked = []string{}
	}

	return &Player{
		ID:                 hash["id"],
		Name:               hash["name"],
		Role:               Role(hash["role"]),
		UnlockedCharacters: unlocked,
	}
}
