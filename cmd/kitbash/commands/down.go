package commands

import (
	"context"
	"fmt"

	dockerpkg "github.com/dyluth/kitbash/internal/docker"
	"github.com/dyluth/kitbash/internal/printer"
	"github.com/spf13/cobra"
)

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop a local Redis instance",
	Long: `Stop and remove the containers of a kitbash instance.

All builds, players and characters stored in the instance are lost.
The command does not prompt for confirmation and executes immediately.

Examples:
  # Stop the default instance
  kitbash down

  # Stop a specific instance
  kitbash down --instance arcade-2`,
	Args: cobra.NoArgs,
	RunE: runDown,
}

func init() {
	rootCmd.AddCommand(downCmd)
}

func runDown(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	instanceName, err := resolveInstanceName("")
	if err != nil {
		return err
	}

	cli, err := dockerpkg.NewClient(ctx)
	if err != nil {
		return err
	}
	defer cli.Close()

	removed, err := stopAndRemove(ctx, cli, instanceName)
	if err != nil {
		return err
	}

	if removed == 0 {
		return printer.Error(
			fmt.Sprintf("instance '%s' not found", instanceName),
			fmt.Sprintf("No containers found with instance name '%s'.", instanceName),
			[]string{"Run 'kitbash status' to see available instances"},
		)
	}

	printer.Success("\nInstance '%s' removed successfully\n", instanceName)

	return nil
}
