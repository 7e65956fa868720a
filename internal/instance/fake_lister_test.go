package instance

import (
	"context"
	"errors"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
)

// fakeLister applies "label" filters the way the Docker daemon does.
type fakeLister struct {
	containers []types.Container
	err        error
}

func (f *fakeLister) ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error) {
	if f.err != nil {
		return nil, f.err
	}

	var out []types.Container
	for _, c := range f.containers {
		if matchesLabels(c.Labels, options.Filters.Get("label")) {
			out = append(out, c)
		}
	}
	return out, nil
}

func matchesLabels(labels map[string]string, wanted []string) bool {
	for _, w := range wanted {
		key, value, hasValue := strings.Cut(w, "=")
		got, ok := labels[key]
		if !ok || (hasValue && got != value) {
			return false
		}
	}
	return true
}

var errDockerDown = errors.New("docker daemon unreachable")
