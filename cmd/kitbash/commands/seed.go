package commands

import (
	"context"
	"fmt"

	"github.com/dyluth/kitbash/internal/catalog"
	"github.com/dyluth/kitbash/internal/config"
	"github.com/dyluth/kitbash/internal/printer"
	"github.com/dyluth/kitbash/internal/scaffold"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed [CONFIG]",
	Short: "Load characters and players into an instance",
	Long: `Load the characters and players defined in a config file into an instance.

The target instance is --instance, then KITBASH_INSTANCE, then the config's
instance field. Existing characters and players with the same IDs are replaced. Builds are
never touched, so seeding again after editing the config is safe.

Examples:
  # Seed from ./kitbash.yml
  kitbash seed

  # Seed another instance from a specific file
  kitbash seed configs/arcade.yml --instance arcade-2`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	path := scaffold.ConfigFile
	if len(args) > 0 {
		path = args[0]
	}

	cfg, err := config.Load(path)
	if err != nil {
		return printer.Error(
			fmt.Sprintf("cannot load %s", path),
			err.Error(),
			[]string{"Create a starter config:\n  kitbash init"},
		)
	}

	client, err := connectInstance(ctx, cfg.Instance)
	if err != nil {
		return err
	}
	defer client.Close()

	summary, err := catalog.Seed(ctx, client, cfg)
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	printer.Success("Seeded instance '%s'\n", client.InstanceName())
	printer.Field("Characters:", summary.Characters)
	printer.Field("Players:", summary.Players)

	return nil
}
