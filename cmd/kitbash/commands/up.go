package commands

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/dyluth/kitbash/internal/config"
	dockerpkg "github.com/dyluth/kitbash/internal/docker"
	"github.com/dyluth/kitbash/internal/instance"
	"github.com/dyluth/kitbash/internal/printer"
	"github.com/dyluth/kitbash/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	upConfigPath string
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Start a local Redis instance",
	Long: `Start a Redis container for a kitbash instance.

The container is labelled with the instance name and its host port, so later
commands find it without any extra flags. The image and port come from the
redis section of kitbash.yml when present.

Examples:
  # Start the default instance
  kitbash up

  # Start a second, isolated instance
  kitbash up --instance arcade-2`,
	Args: cobra.NoArgs,
	RunE: runUp,
}

func init() {
	upCmd.Flags().StringVarP(&upConfigPath, "config", "f", scaffold.ConfigFile, "Configuration file for Redis settings (optional)")
	rootCmd.AddCommand(upCmd)
}

func runUp(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	redisCfg, configured := loadRedisConfig(upConfigPath)

	instanceName, err := resolveInstanceName(configured)
	if err != nil {
		return err
	}

	cli, err := dockerpkg.NewClient(ctx)
	if err != nil {
		return err
	}
	defer cli.Close()

	collision, err := instance.CheckNameCollision(ctx, cli, instanceName)
	if err != nil {
		return err
	}
	if collision {
		return printer.Error(
			fmt.Sprintf("instance '%s' already exists", instanceName),
			"Found existing containers with this instance name.",
			[]string{
				fmt.Sprintf("Stop the existing instance:\n  kitbash down --instance %s", instanceName),
				"Choose a different name:\n  kitbash up --instance other-name",
			},
		)
	}

	runID := dockerpkg.GenerateRunID()
	port, err := createRedis(ctx, cli, redisCfg, instanceName, runID)
	if err != nil {
		printer.Warning("Resource creation failed. Rolling back...\n")
		if rollbackErr := removeInstanceContainers(ctx, cli, instanceName); rollbackErr != nil {
			printer.Warning("rollback encountered errors: %v\n", rollbackErr)
		}
		return fmt.Errorf("failed to create instance: %w", err)
	}

	printer.Success("\nInstance '%s' started\n", instanceName)
	printer.Field("Redis:", instance.GetRedisURL(port))
	printer.Println()
	printer.Println("Next steps:")
	printer.Println("  1. Load characters and players: kitbash seed kitbash.yml")
	printer.Println("  2. Start a build:                kitbash start --player <id> --character <id>")

	return nil
}

// loadRedisConfig reads the redis section and instance name of the config
// file, falling back to defaults when the file is missing or invalid.
func loadRedisConfig(path string) (*config.RedisConfig, string) {
	cfg, err := config.Load(path)
	if err != nil {
		return &config.RedisConfig{Image: config.DefaultRedisImage}, ""
	}
	return cfg.Redis, cfg.Instance
}

func createRedis(ctx context.Context, cli *client.Client, redisCfg *config.RedisConfig, instanceName, runID string) (int, error) {
	port, err := instance.ReservePort(ctx, cli, redisCfg.Port)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate Redis port: %w", err)
	}
	printer.Step("Allocated Redis port: %d\n", port)

	name := dockerpkg.RedisContainerName(instanceName)
	cfg, hostCfg := dockerpkg.RedisSpec(instanceName, runID, redisCfg.Image, port)

	resp, err := cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, name)
	if err != nil {
		return 0, fmt.Errorf("failed to create Redis container: %w", err)
	}

	if err := cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return 0, fmt.Errorf("failed to start Redis container: %w", err)
	}
	printer.Step("Started Redis container: %s (%s)\n", name, redisCfg.Image)

	return port, nil
}

// removeInstanceContainers rolls back a partially created instance.
func removeInstanceContainers(ctx context.Context, cli *client.Client, instanceName string) error {
	_, err := stopAndRemove(ctx, cli, instanceName)
	return err
}

// stopAndRemove stops and removes every container labelled with the
// instance name. Returns the number removed.
func stopAndRemove(ctx context.Context, cli *client.Client, instanceName string) (int, error) {
	containers, err := cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", dockerpkg.InstanceFilter(instanceName))),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list containers: %w", err)
	}

	// 10s graceful timeout
	timeout := 10
	for _, c := range containers {
		printer.Step("Stopping %s...\n", containerName(c.Names, c.ID))
		if err := cli.ContainerStop(ctx, c.ID, container.StopOptions{Timeout: &timeout}); err != nil {
			// Container might already be stopped
			printer.Warning("failed to stop %s: %v\n", containerName(c.Names, c.ID), err)
		}
	}

	for _, c := range containers {
		printer.Step("Removing %s...\n", containerName(c.Names, c.ID))
		if err := cli.ContainerRemove(ctx, c.ID, container.RemoveOptions{Force: true, RemoveVolumes: true}); err != nil {
			return 0, fmt.Errorf("failed to remove %s: %w", containerName(c.Names, c.ID), err)
		}
	}

	return len(containers), nil
}

func containerName(names []string, id string) string {
	if len(names) > 0 {
		return names[0]
	}
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
