// Package lifecycle starts and validates builds. It enforces the single pending
// build per player and character, scores validated builds and keeps the
// correct-piece cache honest by dropping entries whenever validation fails.
package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"time"

	"github.com/dyluth/kitbash/internal/evaluate"
	"github.com/dyluth/kitbash/internal/scoring"
	"github.com/dyluth/kitbash/pkg/workshop"
	"github.com/google/uuid"
	"go.trai.ch/zerr"
)

// BuildData is a validation request.
type BuildData struct {
	CharacterID     string   `json:"character_id"`
	PiecesPlaced    []string `json:"pieces_placed"` // nil means missing, empty is allowed
	DurationSeconds float64  `json:"duration_seconds"`
}

// Outcome is everything Validate worked out for a build.
type Outcome struct {
	Build           *workshop.Build   `json:"build"`
	Evaluation      evaluate.Result   `json:"evaluation"`
	Breakdown       scoring.Breakdown `json:"breakdown"`
	FirstCompletion bool              `json:"first_completion"`
}

// Engine orchestrates the build lifecycle.
type Engine struct {
	store        Store
	guard        *AccessGuard
	cache        *evaluate.Cache
	instanceName string
	now          func() time.Time
}

// NewEngine creates an engine over store. The cache is injected so callers
// can share or isolate it.
func NewEngine(store Store, cache *evaluate.Cache, instanceName string) *Engine {
	return &Engine{
		store:        store,
		guard:        NewAccessGuard(store),
		cache:        cache,
		instanceName: instanceName,
		now:          time.Now,
	}
}

// Start creates a pending build for the player and character.
// Fails with ErrBuildAlreadyExists while another build is pending; repeated
// calls keep failing until that build is validated.
func (e *Engine) Start(ctx context.Context, playerID, characterID string) (*workshop.Build, error) {
	if _, err := e.guard.VerifyAccess(ctx, playerID, characterID); err != nil {
		e.logRejection("start", playerID, characterID, err)
		return nil, err
	}

	build := &workshop.Build{
		ID:           uuid.New().String(),
		PlayerID:     playerID,
		CharacterID:  characterID,
		State:        workshop.BuildStatePending,
		PiecesPlaced: []string{},
		CreatedAtMs:  e.now().UnixMilli(),
	}

	if err := e.store.CreatePendingBuild(ctx, build); err != nil {
		if errors.Is(err, workshop.ErrPendingBuildExists) {
			err = failure(ErrBuildAlreadyExists, "start build", "player_id", playerID, "character_id", characterID)
		} else {
			err = zerr.Wrap(err, "failed to create pending build")
		}
		e.logRejection("start", playerID, characterID, err)
		return nil, err
	}

	e.logEvent("build_started", map[string]interface{}{
		"build_id":     build.ID,
		"player_id":    playerID,
		"character_id": characterID,
	})

	return build, nil
}

// Validate evaluates and scores the player's pending build for data.CharacterID
// and marks it valid.
func (e *Engine) Validate(ctx context.Context, playerID string, data BuildData) (*workshop.Build, error) {
	outcome, err := e.ValidateDetailed(ctx, playerID, data)
	if err != nil {
		return nil, err
	}
	return outcome.Build, nil
}

// ValidateDetailed is Validate returning the evaluation and score breakdown too.
// Any failure after input checks drops the character's cached correct pieces.
func (e *Engine) ValidateDetailed(ctx context.Context, playerID string, data BuildData) (*Outcome, error) {
	if err := checkBuildData(data); err != nil {
		e.logRejection("validate", playerID, data.CharacterID, err)
		return nil, err
	}

	outcome, err := e.validate(ctx, playerID, data)
	if err != nil {
		e.cache.Invalidate(data.CharacterID)
		e.logRejection("validate", playerID, data.CharacterID, err)
		return nil, err
	}

	e.logEvent("build_validated", map[string]interface{}{
		"build_id":         outcome.Build.ID,
		"player_id":        playerID,
		"character_id":     data.CharacterID,
		"score":            outcome.Build.Score,
		"error_count":      outcome.Build.ErrorCount,
		"first_completion": outcome.FirstCompletion,
	})

	return outcome, nil
}

func (e *Engine) validate(ctx context.Context, playerID string, data BuildData) (*Outcome, error) {
	ch, err := e.guard.VerifyAccess(ctx, playerID, data.CharacterID)
	if err != nil {
		return nil, err
	}

	correct, err := e.cache.CorrectPieces(data.CharacterID, func() (*workshop.Character, error) {
		return ch, nil
	})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to resolve correct pieces")
	}

	build, err := e.store.GetPendingBuild(ctx, playerID, data.CharacterID)
	if err != nil {
		if workshop.IsNotFound(err) {
			return nil, failure(ErrNoPendingBuild, "validate build", "player_id", playerID, "character_id", data.CharacterID)
		}
		return nil, zerr.Wrap(err, "failed to load pending build")
	}

	result := evaluate.Evaluate(data.PiecesPlaced, correct)

	// Count before this build is marked valid so it never counts itself.
	prior, err := e.store.CountValidBuilds(ctx, playerID, data.CharacterID)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to count valid builds")
	}
	first := prior == 0

	breakdown, err := scoring.CalculateBreakdown(result.CorrectlyPlaced, correct, result.ErrorCount, data.DurationSeconds, first)
	if err != nil {
		return nil, err
	}

	build.State = workshop.BuildStateValid
	build.Score = breakdown.Total
	build.DurationSeconds = data.DurationSeconds
	build.ErrorCount = result.ErrorCount
	build.PiecesPlaced = append([]string{}, data.PiecesPlaced...)
	build.ValidatedAtMs = e.now().UnixMilli()

	if err := e.store.SaveBuild(ctx, build); err != nil {
		if workshop.IsNotFound(err) || errors.Is(err, workshop.ErrBuildImmutable) {
			return nil, zerr.With(failure(ErrNoPendingBuild, "save build", "player_id", playerID, "character_id", data.CharacterID), "cause", err.Error())
		}
		return nil, zerr.Wrap(err, "failed to save build")
	}

	return &Outcome{
		Build:           build,
		Evaluation:      result,
		Breakdown:       breakdown,
		FirstCompletion: first,
	}, nil
}

// Build returns a stored build by ID.
func (e *Engine) Build(ctx context.Context, buildID string) (*workshop.Build, error) {
	b, err := e.store.GetBuild(ctx, buildID)
	if err != nil {
		if workshop.IsNotFound(err) {
			return nil, failure(ErrBuildNotFound, "get build", "build_id", buildID)
		}
		return nil, zerr.Wrap(err, "failed to load build")
	}
	return b, nil
}

func checkBuildData(data BuildData) error {
	switch {
	case data.CharacterID == "":
		return failure(ErrInvalidInput, "character_id is required")
	case data.PiecesPlaced == nil:
		return failure(ErrInvalidInput, "pieces_placed is required")
	case !(data.DurationSeconds > 0) || math.IsInf(data.DurationSeconds, 0):
		return failure(ErrInvalidInput, "duration must be positive", "duration_seconds", data.DurationSeconds)
	}
	return nil
}

func (e *Engine) logRejection(op, playerID, characterID string, err error) {
	e.logEvent("build_rejected", map[string]interface{}{
		"operation":    op,
		"player_id":    playerID,
		"character_id": characterID,
		"error":        err.Error(),
		"level":        "warn",
	})
}

// logEvent writes one structured JSON line per engine event.
func (e *Engine) logEvent(eventType string, data map[string]interface{}) {
	data["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	if _, ok := data["level"]; !ok {
		data["level"] = "info"
	}
	data["component"] = "lifecycle"
	data["event_type"] = eventType
	data["instance"] = e.instanceName

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("[Lifecycle] Failed to marshal log event: %v", err)
		return
	}

	log.Println(string(jsonData))
}
