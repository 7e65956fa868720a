// Package watch follows builds as they are started and validated.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dyluth/kitbash/internal/ledger"
	"github.com/dyluth/kitbash/pkg/workshop"
)

// OutputFormat specifies how streamed events are written.
type OutputFormat string

const (
	// OutputFormatDefault writes one human-readable line per event
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL writes each build as a JSON line
	OutputFormatJSONL OutputFormat = "jsonl"
)

// DefaultPollInterval is how often WaitForValidation re-reads the build.
const DefaultPollInterval = 200 * time.Millisecond

// BuildGetter reads a build by ID.
type BuildGetter interface {
	GetBuild(ctx context.Context, buildID string) (*workshop.Build, error)
}

// Subscriber opens a build event subscription.
type Subscriber interface {
	SubscribeBuildEvents(ctx context.Context) (*workshop.Subscription, error)
}

// WaitForValidation polls until the build is valid and returns it.
// A build that does not exist yet is polled for like a pending one.
func WaitForValidation(ctx context.Context, getter BuildGetter, buildID string, interval, timeout time.Duration) (*workshop.Build, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	timeoutCh := time.After(timeout)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-timeoutCh:
			return nil, fmt.Errorf("timeout waiting for build %s to be validated after %v", buildID, timeout)

		case <-ticker.C:
			b, err := getter.GetBuild(ctx, buildID)
			if err != nil {
				if workshop.IsNotFound(err) {
					continue
				}
				return nil, fmt.Errorf("failed to query build: %w", err)
			}

			if !b.IsPending() {
				return b, nil
			}
		}
	}
}

// StreamBuilds writes every build event matching filters to w until ctx is
// cancelled or the subscription ends. Time filters are ignored since events
// are live.
func StreamBuilds(ctx context.Context, sub Subscriber, filters *ledger.FilterCriteria, format OutputFormat, w io.Writer) error {
	if format != OutputFormatDefault && format != OutputFormatJSONL {
		return fmt.Errorf("unknown output format: %s", format)
	}

	subscription, err := sub.SubscribeBuildEvents(ctx)
	if err != nil {
		return err
	}
	defer subscription.Close()

	live := liveFilters(filters)

	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-subscription.Errors():
			if !ok {
				return nil
			}
			fmt.Fprintf(w, "⚠️  %v\n", err)

		case b, ok := <-subscription.Events():
			if !ok {
				return nil
			}
			if live != nil && !live.Matches(b) {
				continue
			}
			if err := writeEvent(w, b, format); err != nil {
				return err
			}
		}
	}
}

func liveFilters(filters *ledger.FilterCriteria) *ledger.FilterCriteria {
	if filters == nil {
		return nil
	}
	f := *filters
	f.SinceTimestampMs = 0
	f.UntilTimestampMs = 0
	return &f
}

func writeEvent(w io.Writer, b *workshop.Build, format OutputFormat) error {
	if format == OutputFormatJSONL {
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("failed to marshal build event: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}

	_, err := fmt.Fprintln(w, FormatEvent(b))
	return err
}

// FormatEvent renders a build event as one line.
func FormatEvent(b *workshop.Build) string {
	if b.IsPending() {
		return fmt.Sprintf("🔨 Build Started: player=%s, character=%s, id=%s", b.PlayerID, b.CharacterID, b.ID)
	}

	flawless := ""
	if b.ErrorCount == 0 {
		flawless = " ✨"
	}
	return fmt.Sprintf("🏆 Build Validated: player=%s, character=%s, score=%d, errors=%d, time=%.1fs, id=%s%s",
		b.PlayerID, b.CharacterID, b.Score, b.ErrorCount, b.DurationSeconds, b.ID, flawless)
}
