package instance

import (
	"fmt"
	"os"
)

// EnvRedisHost overrides the host used to reach a published Redis port.
const EnvRedisHost = "KITBASH_REDIS_HOST"

// redisHost returns the host that reaches ports published by Docker: the
// override if set, "host.docker.internal" inside a container, else "localhost".
func redisHost() string {
	if h := os.Getenv(EnvRedisHost); h != "" {
		return h
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return "host.docker.internal"
	}
	return "localhost"
}

// GetRedisURL returns the URL of an instance's Redis published on port.
func GetRedisURL(port int) string {
	return fmt.Sprintf("redis://%s:%d", redisHost(), port)
}
