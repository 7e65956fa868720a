package lifecycle

import (
	"github.com/dyluth/kitbash/internal/scoring"
	"go.trai.ch/zerr"
)

var (
	// ErrInvalidInput is returned when a request is missing required fields.
	ErrInvalidInput = scoring.ErrInvalidInput

	// ErrPlayerNotFound is returned when the player record does not exist.
	ErrPlayerNotFound = zerr.New("player not found")

	// ErrCharacterNotFound is returned when the character record does not exist.
	ErrCharacterNotFound = zerr.New("character not found")

	// ErrAccessDenied is returned when the player has not unlocked the character.
	ErrAccessDenied = zerr.New("character not unlocked for player")

	// ErrBuildAlreadyExists is returned by Start while a pending build is outstanding.
	ErrBuildAlreadyExists = zerr.New("pending build already exists")

	// ErrNoPendingBuild is returned by Validate when no build was started.
	ErrNoPendingBuild = zerr.New("no pending build")

	// ErrBuildNotFound is returned when a build ID does not exist.
	ErrBuildNotFound = zerr.New("build not found")
)

// failure wraps a sentinel with an operation message and key/value metadata
// while keeping errors.Is(err, sentinel) true.
func failure(sentinel error, op string, kv ...any) error {
	err := zerr.Wrap(sentinel, op)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		err = zerr.With(err, key, kv[i+1])
	}
	return err
}
