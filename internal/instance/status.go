package instance

import (
	"github.com/docker/docker/api/types"
)

// Status is the health of an instance, derived from its containers.
type Status string

const (
	StatusRunning  Status = "Running"  // every container running
	StatusDegraded Status = "Degraded" // some running, some not
	StatusStopped  Status = "Stopped"  // nothing running
)

// InstanceInfo is one row of `kitbash status`.
type InstanceInfo struct {
	Name      string `json:"name"`
	Status    Status `json:"status"`
	RedisPort int    `json:"redis_port"`
}

// DetermineStatus reduces container states to an instance status. No
// containers at all counts as stopped.
func DetermineStatus(containers []types.Container) Status {
	var running int
	for _, c := range containers {
		if c.State == "running" {
			running++
		}
	}

	if running == 0 {
		return StatusStopped
	}
	if running < len(containers) {
		return StatusDegraded
	}
	return StatusRunning
}
