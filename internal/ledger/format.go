package ledger

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dyluth/kitbash/pkg/workshop"
)

// FormatTable writes builds as a table with columns ID, PLAYER, CHARACTER,
// STATE, SCORE, ERRORS, TIME and AGE. Returns the number of builds formatted.
func FormatTable(w io.Writer, builds []*workshop.Build, instanceName string) int {
	if len(builds) == 0 {
		fmt.Fprintf(w, "No builds found for instance '%s'\n", instanceName)
		return 0
	}

	fmt.Fprintf(w, "Builds for instance '%s':\n\n", instanceName)

	fmt.Fprintf(w, "%-10s %-14s %-14s %-8s %6s %6s %8s %-8s\n",
		"ID", "PLAYER", "CHARACTER", "STATE", "SCORE", "ERRORS", "TIME", "AGE")
	fmt.Fprintf(w, "%-10s %-14s %-14s %-8s %6s %6s %8s %-8s\n",
		"----------", "--------------", "--------------", "--------", "------", "------", "--------", "--------")

	for _, b := range builds {
		fmt.Fprintf(w, "%-10s %-14s %-14s %-8s %6s %6s %8s %-8s\n",
			formatID(b.ID),
			truncate(b.PlayerID, 14),
			truncate(b.CharacterID, 14),
			b.State,
			formatIfValid(b, strconv.Itoa(b.Score)),
			formatIfValid(b, strconv.Itoa(b.ErrorCount)),
			formatIfValid(b, formatDuration(b.DurationSeconds)),
			formatTimestamp(b.CreatedAtMs),
		)
	}

	countMsg := "build"
	if len(builds) != 1 {
		countMsg = "builds"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(builds), countMsg)

	return len(builds)
}

// FormatJSONL writes builds as line-delimited JSON, one build per line.
func FormatJSONL(w io.Writer, builds []*workshop.Build) error {
	for _, b := range builds {
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("failed to marshal build to JSON: %w", err)
		}

		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}

	return nil
}

// FormatSingleJSON writes a single build as pretty-printed JSON.
func FormatSingleJSON(w io.Writer, b *workshop.Build) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal build to JSON: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}

	fmt.Fprintln(w)

	return nil
}

// formatID truncates a build ID to its first 8 characters.
func formatID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if s == "" {
		return "-"
	}
	if len(s) > n {
		return s[:n-1] + "…"
	}
	return s
}

// formatIfValid returns "-" for pending builds, which have no result yet.
func formatIfValid(b *workshop.Build, value string) string {
	if b.IsPending() {
		return "-"
	}
	return value
}

func formatDuration(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 1, 64) + "s"
}

// formatTimestamp formats Unix milliseconds as relative time like "2m ago".
func formatTimestamp(timestampMs int64) string {
	if timestampMs == 0 {
		return "-"
	}

	diff := time.Since(time.UnixMilli(timestampMs))

	switch {
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}
