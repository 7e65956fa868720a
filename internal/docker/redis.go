package docker

import (
	"strconv"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
)

const redisContainerPort nat.Port = "6379/tcp"

// RedisSpec returns the container and host config for an instance's Redis,
// published on 127.0.0.1:hostPort and labelled so discovery can find the port.
func RedisSpec(instanceName, runID, image string, hostPort int) (*container.Config, *container.HostConfig) {
	labels := BuildLabels(instanceName, runID, ComponentRedis)
	labels[LabelRedisPort] = strconv.Itoa(hostPort)

	cfg := &container.Config{
		Image:        image,
		Labels:       labels,
		ExposedPorts: nat.PortSet{redisContainerPort: struct{}{}},
	}
	hostCfg := &container.HostConfig{
		PortBindings: nat.PortMap{
			redisContainerPort: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: strconv.Itoa(hostPort)}},
		},
		RestartPolicy: container.RestartPolicy{Name: "unless-stopped"},
	}
	return cfg, hostCfg
}
