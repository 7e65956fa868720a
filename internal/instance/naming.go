package instance

import (
	"context"
	"fmt"
	"regexp"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	dockerpkg "github.com/dyluth/kitbash/internal/docker"
)

// DefaultName is used when neither --instance nor KITBASH_INSTANCE is set.
const DefaultName = "default"

// MaxNameLength keeps "kitbash-redis-<name>" within a 63 character DNS label.
const MaxNameLength = 63 - len("kitbash-redis-")

var namePattern = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

// ResolveName picks the first non-empty of flagValue, envValue and DefaultName
// and validates it.
func ResolveName(flagValue, envValue string) (string, error) {
	name := flagValue
	if name == "" {
		name = envValue
	}
	if name == "" {
		name = DefaultName
	}
	return name, ValidateName(name)
}

// ValidateName checks an instance name. Names end up in a container name and
// in every Redis key, so only lowercase letters, digits and inner hyphens are
// allowed.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("instance name cannot be empty")
	case len(name) > MaxNameLength:
		return fmt.Errorf("instance name '%s' is %d characters (max %d)", name, len(name), MaxNameLength)
	case !namePattern.MatchString(name):
		return fmt.Errorf("invalid instance name '%s': use lowercase letters, digits and inner hyphens", name)
	}
	return nil
}

// CheckNameCollision reports whether any container, running or not, already
// carries the instance name.
func CheckNameCollision(ctx context.Context, cli dockerpkg.ContainerLister, instanceName string) (bool, error) {
	containers, err := cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", dockerpkg.InstanceFilter(instanceName))),
	})
	if err != nil {
		return false, fmt.Errorf("failed to check for name collision: %w", err)
	}
	return len(containers) > 0, nil
}
