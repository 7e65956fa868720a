package commands

import (
	"fmt"
	"os"

	"github.com/dyluth/kitbash/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	forceInit bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter kitbash.yml",
	Long: `Create a starter kitbash.yml in the current directory.

The file defines the characters, their pieces and the players that can build
them. Load it into an instance with 'kitbash seed kitbash.yml'.

Use --force to overwrite an existing kitbash.yml.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing kitbash.yml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	if !forceInit {
		if err := scaffold.CheckExisting(dir); err != nil {
			return err
		}
	}

	if err := scaffold.Initialize(dir, forceInit); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	scaffold.PrintSuccess()

	return nil
}
