// Package ledger lists, filters and formats builds for the CLI.
package ledger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sort"

	"github.com/dyluth/kitbash/pkg/workshop"
)

// OutputFormat specifies how to format the build list output.
type OutputFormat string

const (
	// OutputFormatDefault uses a table format
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL outputs complete builds as line-delimited JSON
	OutputFormatJSONL OutputFormat = "jsonl"
)

// FilterCriteria defines filtering options for the builds command.
// All filters are ANDed together.
type FilterCriteria struct {
	SinceTimestampMs int64               // Unix timestamp in milliseconds, 0 = no filter
	UntilTimestampMs int64               // Unix timestamp in milliseconds, 0 = no filter
	PlayerID         string              // Exact match, empty = no filter
	CharacterID      string              // Glob pattern ("kn*"), empty = no filter
	State            workshop.BuildState // Exact match, empty = no filter
}

// Matches returns true if the build matches all filter criteria.
func (fc *FilterCriteria) Matches(b *workshop.Build) bool {
	if fc.SinceTimestampMs > 0 && b.CreatedAtMs < fc.SinceTimestampMs {
		return false
	}
	if fc.UntilTimestampMs > 0 && b.CreatedAtMs > fc.UntilTimestampMs {
		return false
	}
	if fc.PlayerID != "" && b.PlayerID != fc.PlayerID {
		return false
	}
	if fc.CharacterID != "" {
		matched, err := path.Match(fc.CharacterID, b.CharacterID)
		if err != nil || !matched {
			return false
		}
	}
	if fc.State != "" && b.State != fc.State {
		return false
	}
	return true
}

// Reader is the subset of the workshop client used to read builds.
type Reader interface {
	ScanBuildIDs(ctx context.Context, prefix string) ([]string, error)
	GetBuild(ctx context.Context, buildID string) (*workshop.Build, error)
}

// CollectBuilds returns every build matching filters, oldest first.
// Malformed builds are skipped with a warning to stderr. A build deleted
// between the scan and the read is skipped silently.
func CollectBuilds(ctx context.Context, r Reader, filters *FilterCriteria) ([]*workshop.Build, error) {
	ids, err := r.ScanBuildIDs(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to scan builds: %w", err)
	}

	builds := make([]*workshop.Build, 0, len(ids))
	for _, id := range ids {
		b, err := r.GetBuild(ctx, id)
		if err != nil {
			if workshop.IsNotFound(err) {
				continue
			}
			fmt.Fprintf(os.Stderr, "⚠️  Skipping malformed build: id=%s (error: %v)\n", id, err)
			continue
		}

		if filters != nil && !filters.Matches(b) {
			continue
		}

		builds = append(builds, b)
	}

	// Oldest first; ID breaks ties so output is stable.
	sort.Slice(builds, func(i, j int) bool {
		if builds[i].CreatedAtMs != builds[j].CreatedAtMs {
			return builds[i].CreatedAtMs < builds[j].CreatedAtMs
		}
		return builds[i].ID < builds[j].ID
	})

	return builds, nil
}

// ListBuilds writes every build matching filters to w in the requested format.
func ListBuilds(ctx context.Context, r Reader, instanceName string, format OutputFormat, filters *FilterCriteria, w io.Writer) error {
	if format != OutputFormatDefault && format != OutputFormatJSONL {
		return fmt.Errorf("unknown output format: %s", format)
	}

	builds, err := CollectBuilds(ctx, r, filters)
	if err != nil {
		return err
	}

	switch format {
	case OutputFormatJSONL:
		if err := FormatJSONL(w, builds); err != nil {
			return fmt.Errorf("failed to format JSONL output: %w", err)
		}
	default:
		FormatTable(w, builds, instanceName)
	}

	return nil
}
