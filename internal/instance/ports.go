package instance

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	dockerpkg "github.com/dyluth/kitbash/internal/docker"
)

const (
	// Port range for Redis containers (allows 100 concurrent instances)
	startPort = 6379
	endPort   = 6478
)

// FindNextAvailablePort finds the next available port for Redis, starting from 6379.
// Checks both Docker container labels and actual port bindability on the host.
func FindNextAvailablePort(ctx context.Context, cli dockerpkg.ContainerLister) (int, error) {
	used, err := usedRedisPorts(ctx, cli)
	if err != nil {
		return 0, err
	}

	for port := startPort; port <= endPort; port++ {
		if used[port] {
			continue
		}
		if isPortBindable(port) {
			return port, nil
		}
	}

	return 0, fmt.Errorf("no available Redis ports (range %d-%d exhausted)", startPort, endPort)
}

// ReservePort returns preferred if no other instance claims it and it can be
// bound; a preferred port of 0 falls back to FindNextAvailablePort.
func ReservePort(ctx context.Context, cli dockerpkg.ContainerLister, preferred int) (int, error) {
	if preferred == 0 {
		return FindNextAvailablePort(ctx, cli)
	}

	used, err := usedRedisPorts(ctx, cli)
	if err != nil {
		return 0, err
	}
	if used[preferred] {
		return 0, fmt.Errorf("port %d is already used by another kitbash instance", preferred)
	}
	if !isPortBindable(preferred) {
		return 0, fmt.Errorf("port %d is not available on this host", preferred)
	}

	return preferred, nil
}

// usedRedisPorts reads kitbash.redis.port labels from existing Redis containers.
func usedRedisPorts(ctx context.Context, cli dockerpkg.ContainerLister) (map[int]bool, error) {
	containers, err := cli.ContainerList(ctx, container.ListOptions{
		All: true,
		Filters: filters.NewArgs(
			filters.Arg("label", fmt.Sprintf("%s=true", dockerpkg.LabelProject)),
			filters.Arg("label", fmt.Sprintf("%s=%s", dockerpkg.LabelComponent, dockerpkg.ComponentRedis)),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query Docker containers: %w", err)
	}

	used := make(map[int]bool)
	for _, c := range containers {
		if portStr, ok := c.Labels[dockerpkg.LabelRedisPort]; ok {
			if port, err := strconv.Atoi(portStr); err == nil {
				used[port] = true
			}
		}
	}

	return used, nil
}

// isPortBindable checks if a port can be bound on localhost.
func isPortBindable(port int) bool {
	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	if err != nil {
		return false
	}
	listener.Close()
	return true
}
