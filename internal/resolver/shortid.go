// Package resolver expands short build ID prefixes to full build IDs.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/dyluth/kitbash/pkg/workshop"
)

// MinShortIDLength is the minimum required length for short ID prefixes.
const MinShortIDLength = 6

// maxListedMatches caps how many candidates FormatAmbiguousError lists.
const maxListedMatches = 10

// BuildFinder is the subset of the workshop client used for resolution.
type BuildFinder interface {
	GetBuild(ctx context.Context, buildID string) (*workshop.Build, error)
	ScanBuildIDs(ctx context.Context, prefix string) ([]string, error)
}

// ResolveBuildID resolves a short ID prefix to a full build ID.
//
// A full UUID is checked for existence and returned as-is. Anything else must
// be at least MinShortIDLength characters and match exactly one build.
func ResolveBuildID(ctx context.Context, finder BuildFinder, shortID string) (string, error) {
	shortID = strings.ToLower(strings.TrimSpace(shortID))

	if len(shortID) == 36 && strings.Count(shortID, "-") == 4 {
		if _, err := finder.GetBuild(ctx, shortID); err != nil {
			if workshop.IsNotFound(err) {
				return "", &NotFoundError{ShortID: shortID}
			}
			return "", fmt.Errorf("failed to verify build existence: %w", err)
		}
		return shortID, nil
	}

	if len(shortID) < MinShortIDLength {
		return "", fmt.Errorf("short ID must be at least %d characters (got %d)", MinShortIDLength, len(shortID))
	}

	matches, err := finder.ScanBuildIDs(ctx, shortID)
	if err != nil {
		return "", fmt.Errorf("failed to search for build: %w", err)
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{ShortID: shortID}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousError{ShortID: shortID, Matches: matches}
	}
}

// NotFoundError indicates no builds matched the short ID.
type NotFoundError struct {
	ShortID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no builds found matching '%s'", e.ShortID)
}

// AmbiguousError indicates multiple builds matched the short ID.
type AmbiguousError struct {
	ShortID string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous short ID '%s' matches %d builds", e.ShortID, len(e.Matches))
}

// FormatAmbiguousError lists the matching IDs (up to ten) for display.
func FormatAmbiguousError(err *AmbiguousError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: ambiguous short ID '%s' matches %d builds:\n", err.ShortID, len(err.Matches))

	shown := min(len(err.Matches), maxListedMatches)
	for _, id := range err.Matches[:shown] {
		fmt.Fprintf(&b, "  %s\n", id)
	}
	if len(err.Matches) > shown {
		fmt.Fprintf(&b, "  ...and %d more\n", len(err.Matches)-shown)
	}

	b.WriteString("\nUse a longer prefix to uniquely identify the build.")
	return b.String()
}

// IsNotFoundError checks if an error is a NotFoundError.
func IsNotFoundError(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// IsAmbiguousError checks if an error is an AmbiguousError.
func IsAmbiguousError(err error) bool {
	_, ok := err.(*AmbiguousError)
	return ok
}
