package commands

import (
	"context"

	"github.com/dyluth/kitbash/internal/lifecycle"
	"github.com/dyluth/kitbash/internal/printer"
	"github.com/dyluth/kitbash/pkg/workshop"
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

var unlockCmd = &cobra.Command{
	Use:   "unlock PLAYER CHARACTER",
	Short: "Unlock a character for a player",
	Long: `Add a character to a player's unlocked set so they can build it.

Both the player and the character must already exist. Unlocking an already
unlocked character is a no-op.`,
	Args: cobra.ExactArgs(2),
	RunE: runUnlock,
}

func init() {
	rootCmd.AddCommand(unlockCmd)
}

func runUnlock(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	playerID, characterID := args[0], args[1]

	client, err := connectWorkshop(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if _, err := client.GetPlayer(ctx, playerID); err != nil {
		if workshop.IsNotFound(err) {
			return lifecycleError(zerr.With(zerr.Wrap(lifecycle.ErrPlayerNotFound, "unlock"), "player_id", playerID))
		}
		return err
	}
	if _, err := client.GetCharacter(ctx, characterID); err != nil {
		if workshop.IsNotFound(err) {
			return lifecycleError(zerr.With(zerr.Wrap(lifecycle.ErrCharacterNotFound, "unlock"), "character_id", characterID))
		}
		return err
	}

	if err := client.UnlockCharacter(ctx, playerID, characterID); err != nil {
		return err
	}

	printer.Success("Unlocked '%s' for player '%s'\n", characterID, playerID)
	return nil
}
