package commands

import (
	"context"
	"fmt"

	"github.com/dyluth/kitbash/internal/ledger"
	"github.com/dyluth/kitbash/internal/printer"
	"github.com/dyluth/kitbash/internal/resolver"
	"github.com/dyluth/kitbash/internal/timespec"
	"github.com/dyluth/kitbash/pkg/workshop"
	"github.com/spf13/cobra"
)

var (
	buildsOutputFormat string
	buildsSince        string
	buildsUntil        string
	buildsPlayer       string
	buildsCharacter    string
	buildsState        string
)

var buildsCmd = &cobra.Command{
	Use:   "builds [BUILD_ID]",
	Short: "Inspect builds with filtering",
	Long: `Inspect builds in list or get mode.

List Mode (no BUILD_ID):
  Displays builds matching filters as a table or JSONL stream, oldest first.

Get Mode (with BUILD_ID):
  Displays a single build as pretty-printed JSON.
  Supports short IDs (e.g., "abc123" instead of full UUID).

Output Formats (list mode only):
  default - Human-readable table
  jsonl   - Line-delimited JSON, one build per line

Filters (list mode only):
  --since      - Builds created after this time (duration, "7d", "today" or RFC3339)
  --until      - Builds created before this time
  --player     - Exact player ID
  --character  - Character ID or glob pattern ("kn*")
  --state      - pending or valid

Examples:
  # List all builds
  kitbash builds

  # A player's valid builds from the last day
  kitbash builds --player player-1 --state valid --since 24h

  # Pipe to jq
  kitbash builds --output=jsonl | jq 'select(.score > 500) | .id'

  # Get a specific build by short ID
  kitbash builds 3f2a9c`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuilds,
}

func init() {
	buildsCmd.Flags().StringVarP(&buildsOutputFormat, "output", "o", "default", "Output format: default or jsonl (ignored in get mode)")
	buildsCmd.Flags().StringVar(&buildsSince, "since", "", "Show builds created after time")
	buildsCmd.Flags().StringVar(&buildsUntil, "until", "", "Show builds created before time")
	buildsCmd.Flags().StringVar(&buildsPlayer, "player", "", "Filter by player ID")
	buildsCmd.Flags().StringVar(&buildsCharacter, "character", "", "Filter by character ID (glob pattern)")
	buildsCmd.Flags().StringVar(&buildsState, "state", "", "Filter by state: pending or valid")
	rootCmd.AddCommand(buildsCmd)
}

func runBuilds(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if len(args) > 0 {
		return runBuildsGet(ctx, cmd, args[0])
	}

	var outputFormat ledger.OutputFormat
	switch buildsOutputFormat {
	case "default":
		outputFormat = ledger.OutputFormatDefault
	case "jsonl":
		outputFormat = ledger.OutputFormatJSONL
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", buildsOutputFormat),
			[]string{"Valid formats: default, jsonl"},
		)
	}

	filters, err := buildFilters()
	if err != nil {
		return err
	}

	client, err := connectWorkshop(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	return ledger.ListBuilds(ctx, client, client.InstanceName(), outputFormat, filters, cmd.OutOrStdout())
}

// buildFilters turns the filter flags into criteria shared by builds and watch.
func buildFilters() (*ledger.FilterCriteria, error) {
	since, until, err := timespec.ParseRange(buildsSince, buildsUntil)
	if err != nil {
		return nil, printer.Error(
			"invalid time filter",
			err.Error(),
			[]string{
				"Use a duration:   --since 2h",
				"Use days:         --since 7d",
				"Use a timestamp:  --since 2025-10-29T13:00:00Z",
			},
		)
	}

	state := workshop.BuildState(buildsState)
	if state != "" {
		if err := state.Validate(); err != nil {
			return nil, printer.Error(
				"invalid state filter",
				err.Error(),
				[]string{"Valid states: pending, valid"},
			)
		}
	}

	return &ledger.FilterCriteria{
		SinceTimestampMs: since,
		UntilTimestampMs: until,
		PlayerID:         buildsPlayer,
		CharacterID:      buildsCharacter,
		State:            state,
	}, nil
}

func runBuildsGet(ctx context.Context, cmd *cobra.Command, shortID string) error {
	client, err := connectWorkshop(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	fullID, err := resolver.ResolveBuildID(ctx, client, shortID)
	if err != nil {
		switch {
		case resolver.IsNotFoundError(err):
			return printer.Error(
				fmt.Sprintf("build with ID '%s' not found", shortID),
				"The specified build does not exist.",
				[]string{"List all builds:\n  kitbash builds"},
			)
		case resolver.IsAmbiguousError(err):
			return printer.Error(
				fmt.Sprintf("ambiguous build ID '%s'", shortID),
				resolver.FormatAmbiguousError(err.(*resolver.AmbiguousError)),
				[]string{"Use a longer prefix or the full UUID"},
			)
		}
		return err
	}

	if err := ledger.GetBuild(ctx, client, fullID, cmd.OutOrStdout()); err != nil {
		if ledger.IsNotFound(err) {
			return printer.Error(
				fmt.Sprintf("build with ID '%s' not found", shortID),
				"The build was removed while it was being read.",
				[]string{"List all builds:\n  kitbash builds"},
			)
		}
		return err
	}

	return nil
}
