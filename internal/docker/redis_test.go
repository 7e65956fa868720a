package docker

import (
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSpec(t *testing.T) {
	cfg, hostCfg := RedisSpec("arcade-1", "run-1", "redis:7-alpine", 6381)

	assert.Equal(t, "redis:7-alpine", cfg.Image)
	assert.Equal(t, "true", cfg.Labels[LabelProject])
	assert.Equal(t, "arcade-1", cfg.Labels[LabelInstanceName])
	assert.Equal(t, "run-1", cfg.Labels[LabelInstanceRunID])
	assert.Equal(t, ComponentRedis, cfg.Labels[LabelComponent])
	assert.Equal(t, "6381", cfg.Labels[LabelRedisPort])
	assert.Contains(t, cfg.ExposedPorts, nat.Port("6379/tcp"))

	bindings := hostCfg.PortBindings[nat.Port("6379/tcp")]
	require.Len(t, bindings, 1)
	assert.Equal(t, "127.0.0.1", bindings[0].HostIP)
	assert.Equal(t, "6381", bindings[0].HostPort)
}
