package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dyluth/kitbash/internal/ledger"
	"github.com/dyluth/kitbash/internal/printer"
	"github.com/dyluth/kitbash/internal/resolver"
	"github.com/dyluth/kitbash/internal/watch"
	"github.com/dyluth/kitbash/pkg/workshop"
	"github.com/spf13/cobra"
)

var (
	watchOutputFormat string
	watchPlayer       string
	watchCharacter    string
	watchBuild        string
	watchTimeout      time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor builds in real time",
	Long: `Stream build events as they happen, or wait for one build to be validated.

Every started and validated build is printed as it occurs. Use --build to
block until a specific build is validated instead.

Output Formats:
  default - Human-readable output with emojis
  jsonl   - Line-delimited JSON builds for programmatic processing

Examples:
  # Watch all activity
  kitbash watch

  # Watch a single player
  kitbash watch --player player-1

  # Wait for a build to be validated
  kitbash watch --build 3f2a9c --timeout 5m`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutputFormat, "output", "o", "default", "Output format: default or jsonl")
	watchCmd.Flags().StringVar(&watchPlayer, "player", "", "Only show builds for this player")
	watchCmd.Flags().StringVar(&watchCharacter, "character", "", "Only show builds of this character")
	watchCmd.Flags().StringVar(&watchBuild, "build", "", "Wait for this build (full or short ID) to be validated")
	watchCmd.Flags().DurationVar(&watchTimeout, "timeout", 10*time.Minute, "How long to wait with --build")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var outputFormat watch.OutputFormat
	switch watchOutputFormat {
	case "default":
		outputFormat = watch.OutputFormatDefault
	case "jsonl":
		outputFormat = watch.OutputFormatJSONL
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", watchOutputFormat),
			[]string{"Valid formats: default, jsonl"},
		)
	}

	client, err := connectWorkshop(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if watchBuild != "" {
		return waitForBuild(ctx, cmd, client, outputFormat)
	}

	printer.Info("Watching builds on instance '%s' (Ctrl+C to stop)\n", client.InstanceName())

	filters := &ledger.FilterCriteria{
		PlayerID:    watchPlayer,
		CharacterID: watchCharacter,
	}
	return watch.StreamBuilds(ctx, client, filters, outputFormat, cmd.OutOrStdout())
}

func waitForBuild(ctx context.Context, cmd *cobra.Command, client *workshop.Client, format watch.OutputFormat) error {
	fullID, err := resolver.ResolveBuildID(ctx, client, watchBuild)
	if err != nil {
		if resolver.IsNotFoundError(err) {
			return printer.Error(
				fmt.Sprintf("build with ID '%s' not found", watchBuild),
				"The specified build does not exist.",
				[]string{"List pending builds:\n  kitbash builds --state pending"},
			)
		}
		return err
	}

	b, err := watch.WaitForValidation(ctx, client, fullID, watch.DefaultPollInterval, watchTimeout)
	if err != nil {
		return err
	}

	if format == watch.OutputFormatJSONL {
		return ledger.FormatJSONL(cmd.OutOrStdout(), []*workshop.Build{b})
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), watch.FormatEvent(b))
	return err
}
