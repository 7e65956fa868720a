package instance

import (
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/stretchr/testify/assert"
)

func containersIn(states ...string) []types.Container {
	out := make([]types.Container, len(states))
	for i, s := range states {
		out[i] = types.Container{State: s}
	}
	return out
}

func TestDetermineStatus(t *testing.T) {
	tests := []struct {
		name   string
		states []string
		want   Status
	}{
		{"empty", nil, StatusStopped},
		{"single running", []string{"running"}, StatusRunning},
		{"single stopped", []string{"exited"}, StatusStopped},
		{"all running", []string{"running", "running"}, StatusRunning},
		{"mixed", []string{"running", "exited", "exited"}, StatusDegraded},
		{"created but not started", []string{"created"}, StatusStopped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineStatus(containersIn(tt.states...)))
		})
	}
}
