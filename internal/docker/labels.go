package docker

import (
	"fmt"

	"github.com/google/uuid"
)

// Label keys used for kitbash resources
const (
	LabelProject       = "kitbash.project"
	LabelInstanceName  = "kitbash.instance.name"
	LabelInstanceRunID = "kitbash.instance.run_id"
	LabelComponent     = "kitbash.component"
	LabelRedisPort     = "kitbash.redis.port"
)

// ComponentRedis is the component label value of the Redis container.
const ComponentRedis = "redis"

// BuildLabels creates the standard label set for kitbash resources.
// component is optional.
func BuildLabels(instanceName, runID, component string) map[string]string {
	labels := map[string]string{
		LabelProject:       "true",
		LabelInstanceName:  instanceName,
		LabelInstanceRunID: runID,
	}

	if component != "" {
		labels[LabelComponent] = component
	}

	return labels
}

// GenerateRunID creates a new UUID for an instance run.
// Each invocation of `kitbash up` gets a unique run ID.
func GenerateRunID() string {
	return uuid.New().String()
}

// RedisContainerName returns the Redis container name for an instance
func RedisContainerName(instanceName string) string {
	return fmt.Sprintf("kitbash-redis-%s", instanceName)
}

// InstanceFilter returns the label filter value selecting one instance's resources.
func InstanceFilter(instanceName string) string {
	return fmt.Sprintf("%s=%s", LabelInstanceName, instanceName)
}
