package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/citybureau/zba-events/internal/event"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	CheckedAt  time.Time      `json:"checked_at"`
	Source     string         `json:"source"`
	Events     []*event.Event `json:"events"`
	EventCount int            `json:"event_count"`
	NewEvents  []*event.Event `json:"new_events"`
	NewCount   int            `json:"new_count"`
	Skipped    []string       `json:"skipped,omitempty"`
	Filter     string         `json:"filter,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if result.Filter != "" {
		fmt.Fprintf(w, "Filter: %s\n", result.Filter)
	}
	if result.EventCount == 0 {
		fmt.Fprintln(w, "No meetings found.")
	}

	isNew := make(map[string]bool, len(result.NewEvents))
	for _, evt := range result.NewEvents {
		isNew[evt.ID] = true
	}

	for _, evt := range result.Events {
		prefix := "   "
		if isNew[evt.ID] {
			prefix = "NEW"
		}
		fmt.Fprintf(w, "%s %s  %-9s  %s\n", prefix, evt.Start.Date, evt.Status, evt.Name)
		if verbose {
			fmt.Fprintf(w, "     ID: %s\n", evt.ID)
			for _, doc := range evt.Documents {
				if !doc.IsZero() {
					fmt.Fprintf(w, "     %s: %s\n", doc.Note, doc.URL)
				}
			}
		}
	}

	if verbose {
		for _, reason := range result.Skipped {
			fmt.Fprintf(w, "Skipped: %s\n", reason)
		}
	}

	if result.EventCount > 0 {
		fmt.Fprintf(w, "\nTotal: %d meetings, %d new\n", result.EventCount, result.NewCount)
	}
	if len(result.Skipped) > 0 {
		fmt.Fprintf(w, "Skipped %d schedule entries\n", len(result.Skipped))
	}
	return nil
}
