package commands

import (
	"context"
	"fmt"

	"github.com/dyluth/kitbash/internal/evaluate"
	"github.com/dyluth/kitbash/internal/ledger"
	"github.com/dyluth/kitbash/internal/lifecycle"
	"github.com/dyluth/kitbash/internal/printer"
	"github.com/spf13/cobra"
)

var (
	startPlayer    string
	startCharacter string
	startOutput    string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a build",
	Long: `Start a build of a character for a player.

A player can have at most one pending build per character. Starting again
fails until the pending build is validated.

Examples:
  kitbash start --player player-1 --character knight

  # Print the new build as JSON
  kitbash start --player player-1 --character knight --output json`,
	Args: cobra.NoArgs,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVarP(&startPlayer, "player", "p", "", "Player ID (required)")
	startCmd.Flags().StringVarP(&startCharacter, "character", "c", "", "Character ID (required)")
	startCmd.Flags().StringVarP(&startOutput, "output", "o", "default", "Output format: default or json")
	startCmd.MarkFlagRequired("player")
	startCmd.MarkFlagRequired("character")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if err := checkOutputFormat(startOutput); err != nil {
		return err
	}

	client, err := connectWorkshop(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	engine := lifecycle.NewEngine(client, evaluate.NewCache(), client.InstanceName())

	build, err := engine.Start(ctx, startPlayer, startCharacter)
	if err != nil {
		return lifecycleError(err)
	}

	if startOutput == "json" {
		return ledger.FormatSingleJSON(cmd.OutOrStdout(), build)
	}

	printer.Success("Build started\n")
	printer.Field("Build ID:", build.ID)
	printer.Field("Player:", build.PlayerID)
	printer.Field("Character:", build.CharacterID)
	printer.Println()
	printer.Println(fmt.Sprintf("Submit it with:\n  kitbash validate --player %s --character %s --pieces <ids> --duration <seconds>",
		build.PlayerID, build.CharacterID))

	return nil
}

func checkOutputFormat(format string) error {
	switch format {
	case "default", "json":
		return nil
	}
	return printer.Error(
		"invalid output format",
		fmt.Sprintf("Unknown format: %s", format),
		[]string{"Valid formats: default, json"},
	)
}
