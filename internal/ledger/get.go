package ledger

import (
	"context"
	"fmt"
	"io"

	"github.com/dyluth/kitbash/pkg/workshop"
	"github.com/google/uuid"
)

// GetBuild retrieves a single build by full ID and writes it as pretty-printed JSON.
func GetBuild(ctx context.Context, r Reader, buildID string, w io.Writer) error {
	if _, err := uuid.Parse(buildID); err != nil {
		return fmt.Errorf("invalid build ID format: must be a valid UUID")
	}

	b, err := r.GetBuild(ctx, buildID)
	if err != nil {
		if workshop.IsNotFound(err) {
			return &BuildNotFoundError{BuildID: buildID}
		}
		return fmt.Errorf("failed to fetch build: %w", err)
	}

	if err := FormatSingleJSON(w, b); err != nil {
		return fmt.Errorf("failed to format build: %w", err)
	}

	return nil
}

// BuildNotFoundError is returned when a build ID does not exist.
type BuildNotFoundError struct {
	BuildID string
}

func (e *BuildNotFoundError) Error() string {
	return fmt.Sprintf("build with ID '%s' not found", e.BuildID)
}

// IsNotFound returns true if the error is a BuildNotFoundError.
func IsNotFound(err error) bool {
	_, ok := err.(*BuildNotFoundError)
	return ok
}
