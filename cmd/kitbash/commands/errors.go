package commands

import (
	"errors"

	"github.com/dyluth/kitbash/internal/lifecycle"
	"github.com/dyluth/kitbash/internal/printer"
)

// lifecycleError renders engine errors with a title and next steps.
// Unknown errors are returned unchanged.
func lifecycleError(err error) error {
	switch {
	case errors.Is(err, lifecycle.ErrInvalidInput):
		return printer.ErrorFrom("invalid build data", err, []string{
			"Provide the character, the placed pieces and a positive duration:\n  kitbash validate --player <id> --character <id> --pieces a,b --duration 42.5",
		})
	case errors.Is(err, lifecycle.ErrPlayerNotFound):
		return printer.ErrorFrom("player not found", err, []string{
			"Seed players from your config:\n  kitbash seed kitbash.yml",
		})
	case errors.Is(err, lifecycle.ErrCharacterNotFound):
		return printer.ErrorFrom("character not found", err, []string{
			"Seed characters from your config:\n  kitbash seed kitbash.yml",
		})
	case errors.Is(err, lifecycle.ErrAccessDenied):
		return printer.ErrorFrom("character is locked", err, []string{
			"Unlock it for the player:\n  kitbash unlock <player> <character>",
		})
	case errors.Is(err, lifecycle.ErrBuildAlreadyExists):
		return printer.ErrorFrom("build already in progress", err, []string{
			"Finish the current build first:\n  kitbash validate --player <id> --character <id> ...",
			"List pending builds:\n  kitbash builds --state pending",
		})
	case errors.Is(err, lifecycle.ErrNoPendingBuild):
		return printer.ErrorFrom("no build in progress", err, []string{
			"Start a build first:\n  kitbash start --player <id> --character <id>",
		})
	case errors.Is(err, lifecycle.ErrBuildNotFound):
		return printer.ErrorFrom("build not found", err, []string{
			"List builds:\n  kitbash builds",
		})
	}
	return err
}
