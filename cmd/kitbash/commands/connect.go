package commands

import (
	"cmp"
	"context"
	"fmt"
	"os"

	dockerpkg "github.com/dyluth/kitbash/internal/docker"
	"github.com/dyluth/kitbash/internal/instance"
	"github.com/dyluth/kitbash/internal/printer"
	"github.com/dyluth/kitbash/pkg/workshop"
	"github.com/redis/go-redis/v9"
)

// resolveInstanceName applies --instance, then KITBASH_INSTANCE, then the
// instance named in kitbash.yml (configured, may be empty), then the default.
func resolveInstanceName(configured string) (string, error) {
	name, err := instance.ResolveName(instanceFlag, cmp.Or(os.Getenv(envInstance), configured))
	if err != nil {
		return "", printer.Error("invalid instance name", err.Error(), []string{
			"Use lowercase letters, digits and hyphens, e.g.:\n  kitbash --instance arcade-1 <command>",
		})
	}
	return name, nil
}

// resolveRedisURL applies flag, then environment, then Docker discovery of
// the instance's Redis container.
func resolveRedisURL(ctx context.Context, instanceName string) (string, error) {
	if redisURLFlag != "" {
		return redisURLFlag, nil
	}
	if url := os.Getenv(envRedisURL); url != "" {
		return url, nil
	}

	cli, err := dockerpkg.NewClient(ctx)
	if err != nil {
		return "", err
	}
	defer cli.Close()

	port, err := instance.GetInstanceRedisPort(ctx, cli, instanceName)
	if err != nil {
		return "", printer.Error(
			fmt.Sprintf("instance '%s' is not available", instanceName),
			fmt.Sprintf("Error: %v", err),
			[]string{
				fmt.Sprintf("Start the instance:\n  kitbash up --instance %s", instanceName),
				fmt.Sprintf("Or use an existing Redis:\n  kitbash --redis-url redis://localhost:6379 --instance %s <command>", instanceName),
			},
		)
	}

	return instance.GetRedisURL(port), nil
}

// connectWorkshop resolves the instance and returns a connected client.
// Caller must Close the client.
func connectWorkshop(ctx context.Context) (*workshop.Client, error) {
	return connectInstance(ctx, "")
}

// connectInstance is connectWorkshop with a configured instance name fallback.
func connectInstance(ctx context.Context, configured string) (*workshop.Client, error) {
	instanceName, err := resolveInstanceName(configured)
	if err != nil {
		return nil, err
	}

	redisURL, err := resolveRedisURL(ctx, instanceName)
	if err != nil {
		return nil, err
	}

	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client, err := workshop.NewClient(redisOpts, instanceName)
	if err != nil {
		return nil, fmt.Errorf("failed to create workshop client: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, printer.ErrorWithContext(
			"Redis connection failed",
			fmt.Sprintf("Could not connect to Redis at %s", redisURL),
			map[string]string{"instance": instanceName},
			[]string{
				fmt.Sprintf("Check Redis container status:\n  docker logs %s", dockerpkg.RedisContainerName(instanceName)),
				fmt.Sprintf("Restart if needed:\n  kitbash down --instance %s\n  kitbash up --instance %s", instanceName, instanceName),
			},
		)
	}

	return client, nil
}
