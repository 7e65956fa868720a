package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	dockerpkg "github.com/dyluth/kitbash/internal/docker"
	"github.com/dyluth/kitbash/internal/instance"
	"github.com/dyluth/kitbash/internal/printer"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	statusJSON bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List local kitbash instances",
	Long: `List every kitbash instance started with 'kitbash up', with its
container status and Redis port.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cli, err := dockerpkg.NewClient(ctx)
	if err != nil {
		return err
	}
	defer cli.Close()

	instances, err := instance.ListInstances(ctx, cli)
	if err != nil {
		return err
	}

	if statusJSON {
		return writeInstancesJSON(cmd.OutOrStdout(), instances)
	}

	if len(instances) == 0 {
		printer.Info("No kitbash instances found\n")
		printer.Println("\nStart one with:\n  kitbash up")
		return nil
	}

	return writeInstancesTable(cmd.OutOrStdout(), instances)
}

func writeInstancesJSON(w io.Writer, instances []instance.InstanceInfo) error {
	if instances == nil {
		instances = []instance.InstanceInfo{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(instances)
}

func writeInstancesTable(w io.Writer, instances []instance.InstanceInfo) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Name", "Status", "Redis"})
	for _, info := range instances {
		redis := "-"
		if info.RedisPort > 0 {
			redis = instance.GetRedisURL(info.RedisPort)
		}
		if err := table.Append([]string{info.Name, string(info.Status), redis}); err != nil {
			return fmt.Errorf("failed to render instances: %w", err)
		}
	}
	return table.Render()
}
