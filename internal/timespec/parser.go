// Package timespec parses the --since and --until flags of the builds command.
package timespec

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Parse parses a time specification into a Unix timestamp in milliseconds,
// relative to the current time. See ParseAt.
func Parse(spec string) (int64, error) {
	return ParseAt(spec, time.Now())
}

// ParseAt parses spec relative to now. Supported forms:
//   - Go durations, meaning that long before now: "90s", "1h30m"
//   - whole days before now: "7d"
//   - "today": local midnight of now's day
//   - RFC3339 timestamps: "2025-10-29T13:00:00Z"
//   - dates, taken as local midnight: "2025-10-29"
func ParseAt(spec string, now time.Time) (int64, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, fmt.Errorf("empty time specification")
	}

	if spec == "today" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()).UnixMilli(), nil
	}

	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		return t.UnixMilli(), nil
	}

	if t, err := time.ParseInLocation(dateLayout, spec, now.Location()); err == nil {
		return t.UnixMilli(), nil
	}

	if days, ok := strings.CutSuffix(spec, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil && n >= 0 {
			return now.AddDate(0, 0, -n).UnixMilli(), nil
		}
	}

	if d, err := time.ParseDuration(spec); err == nil && d >= 0 {
		return now.Add(-d).UnixMilli(), nil
	}

	return 0, fmt.Errorf("invalid time specification: %s (use a duration like '1h30m' or '7d', 'today', a date like '2025-10-29' or RFC3339)", spec)
}

// ParseRange parses both --since and --until flags into a time range.
// Zero values mean "no bound". Both bounds set requires since < until.
func ParseRange(since, until string) (int64, int64, error) {
	return ParseRangeAt(since, until, time.Now())
}

// ParseRangeAt is ParseRange relative to now.
func ParseRangeAt(since, until string, now time.Time) (int64, int64, error) {
	var sinceMS, untilMS int64
	var err error

	if since != "" {
		if sinceMS, err = ParseAt(since, now); err != nil {
			return 0, 0, fmt.Errorf("invalid --since: %w", err)
		}
	}

	if until != "" {
		if untilMS, err = ParseAt(until, now); err != nil {
			return 0, 0, fmt.Errorf("invalid --until: %w", err)
		}
	}

	if sinceMS > 0 && untilMS > 0 && sinceMS >= untilMS {
		return 0, 0, fmt.Errorf("--since must be before --until")
	}

	return sinceMS, untilMS, nil
}
