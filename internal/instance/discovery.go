package instance

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	dockerpkg "github.com/dyluth/kitbash/internal/docker"
)

// GetInstanceRedisPort retrieves the Redis port for the given instance from Docker labels.
// Returns an error if the Redis container is not found, is not running, or the
// port label is missing.
func GetInstanceRedisPort(ctx context.Context, cli dockerpkg.ContainerLister, instanceName string) (int, error) {
	containers, err := cli.ContainerList(ctx, container.ListOptions{
		All: true,
		Filters: filters.NewArgs(
			filters.Arg("label", dockerpkg.InstanceFilter(instanceName)),
			filters.Arg("label", fmt.Sprintf("%s=%s", dockerpkg.LabelComponent, dockerpkg.ComponentRedis)),
		),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list containers: %w", err)
	}

	if len(containers) == 0 {
		return 0, fmt.Errorf("Redis container not found for instance '%s'", instanceName)
	}

	redisContainer := containers[0]
	if redisContainer.State != "running" {
		return 0, fmt.Errorf("instance '%s' is not running (redis is %s)", instanceName, redisContainer.State)
	}

	portStr, ok := redisContainer.Labels[dockerpkg.LabelRedisPort]
	if !ok {
		return 0, fmt.Errorf("Redis port label missing for instance '%s'", instanceName)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid Redis port '%s': %w", portStr, err)
	}

	return port, nil
}

// ListInstances groups kitbash containers by instance name, sorted by name.
func ListInstances(ctx context.Context, cli dockerpkg.ContainerLister) ([]InstanceInfo, error) {
	containers, err := cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", fmt.Sprintf("%s=true", dockerpkg.LabelProject))),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	byName := make(map[string][]types.Container)
	for _, c := range containers {
		name := c.Labels[dockerpkg.LabelInstanceName]
		if name == "" {
			continue
		}
		byName[name] = append(byName[name], c)
	}

	infos := make([]InstanceInfo, 0, len(byName))
	for name, group := range byName {
		info := InstanceInfo{Name: name, Status: DetermineStatus(group)}
		for _, c := range group {
			if p, err := strconv.Atoi(c.Labels[dockerpkg.LabelRedisPort]); err == nil {
				info.RedisPort = p
			}
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}
