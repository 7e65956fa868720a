package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dyluth/kitbash/internal/evaluate"
	"github.com/dyluth/kitbash/internal/lifecycle"
	"github.com/dyluth/kitbash/internal/printer"
	"github.com/spf13/cobra"
)

var (
	validatePlayer    string
	validateCharacter string
	validatePieces    []string
	validateDuration  float64
	validateOutput    string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate and score a pending build",
	Long: `Submit the pieces placed in a pending build and score it.

Pieces are matched against the character's correct pieces. Decoys and
unknown IDs count as errors; repeated IDs count once. The build becomes
valid and can no longer change.

Score:
  pieces       50/100/150/200 by level, +200 special, +100 combo visual
  errors       -30 per wrong piece
  completion   +300 for every validated build
  speed        +150 under 60s
  flawless     +100 with zero errors
  first build  +200 on the player's first valid build of the character
  The total never drops below zero.

Examples:
  kitbash validate -p player-1 -c knight --pieces helm,sword,shield --duration 42.5

  # A build with no pieces placed
  kitbash validate -p player-1 -c knight --pieces "" --duration 10`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validatePlayer, "player", "p", "", "Player ID (required)")
	validateCmd.Flags().StringVarP(&validateCharacter, "character", "c", "", "Character ID")
	validateCmd.Flags().StringSliceVar(&validatePieces, "pieces", nil, "Comma-separated IDs of the pieces placed")
	validateCmd.Flags().Float64VarP(&validateDuration, "duration", "d", 0, "Build time in seconds")
	validateCmd.Flags().StringVarP(&validateOutput, "output", "o", "default", "Output format: default or json")
	validateCmd.MarkFlagRequired("player")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if err := checkOutputFormat(validateOutput); err != nil {
		return err
	}

	// An absent --pieces flag is missing data; --pieces "" is an empty build.
	var pieces []string
	if cmd.Flags().Changed("pieces") {
		pieces = make([]string, 0, len(validatePieces))
		for _, id := range validatePieces {
			if id = strings.TrimSpace(id); id != "" {
				pieces = append(pieces, id)
			}
		}
	}

	client, err := connectWorkshop(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	engine := lifecycle.NewEngine(client, evaluate.NewCache(), client.InstanceName())

	outcome, err := engine.ValidateDetailed(ctx, validatePlayer, lifecycle.BuildData{
		CharacterID:     validateCharacter,
		PiecesPlaced:    pieces,
		DurationSeconds: validateDuration,
	})
	if err != nil {
		return lifecycleError(err)
	}

	if validateOutput == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(outcome)
	}

	printOutcome(outcome)
	return nil
}

func printOutcome(o *lifecycle.Outcome) {
	b := o.Build
	printer.Success("Build validated: score %d\n", b.Score)
	printer.Field("Build ID:", b.ID)
	printer.Field("Placed:", len(o.Evaluation.CorrectlyPlaced))
	printer.Field("Errors:", b.ErrorCount)
	printer.Field("Time:", fmt.Sprintf("%.1fs", b.DurationSeconds))
	printer.Println()
	printer.Field("Pieces:", o.Breakdown.Pieces)
	printer.Field("Error penalty:", o.Breakdown.ErrorPenalty)
	printer.Field("Completion:", o.Breakdown.Completion)
	printer.Field("Speed:", o.Breakdown.Speed)
	printer.Field("Flawless:", o.Breakdown.Flawless)
	printer.Field("First completion:", o.Breakdown.FirstCompletion)
	printer.Field("Total:", o.Breakdown.Total)
}
