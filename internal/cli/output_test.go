package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/citybureau/zba-events/internal/event"
)

func TestWriteOutput_Text(t *testing.T) {
	mar := meeting("mar", time.March, 18, event.StatusTentative)
	mar.Documents = []event.Link{{URL: "https://example.com/agenda.pdf", Note: "Agenda"}}
	jan := meeting("jan", time.January, 21, event.StatusPassed)

	result := &OutputResult{
		Events:     []*event.Event{jan, mar},
		EventCount: 2,
		NewEvents:  []*event.Event{mar},
		NewCount:   1,
		Skipped:    []string{`column 2: line "TBD": no month and day`},
	}

	var buf bytes.Buffer
	if err := WriteOutput(&buf, result, FormatText, true); err != nil {
		t.Fatalf("WriteOutput() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"NEW 2022-03-18  tentative  Zoning Board of Appeals Meeting",
		"    2022-01-21  passed     Zoning Board of Appeals Meeting",
		"Agenda: https://example.com/agenda.pdf",
		"Skipped: column 2",
		"Total: 2 meetings, 1 new",
		"Skipped 1 schedule entries",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteOutput_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, &OutputResult{}, FormatText, false); err != nil {
		t.Fatalf("WriteOutput() error: %v", err)
	}
	if !strings.Contains(buf.String(), "No meetings found.") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestWriteOutput_JSON(t *testing.T) {
	result := &OutputResult{
		Events:     []*event.Event{meeting("jan", time.January, 21, event.StatusPassed)},
		EventCount: 1,
		NewEvents:  []*event.Event{},
	}

	var buf bytes.Buffer
	if err := WriteOutput(&buf, result, FormatJSON, false); err != nil {
		t.Fatalf("WriteOutput() error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["event_count"].(float64) != 1 {
		t.Errorf("event_count = %v", decoded["event_count"])
	}
	if _, ok := decoded["skipped"]; ok {
		t.Error("skipped should be omitted when empty")
	}
}

func TestWriteOutput_UnknownFormat(t *testing.T) {
	if err := WriteOutput(&bytes.Buffer{}, &OutputResult{}, OutputFormat("xml"), false); err == nil {
		t.Error("expected error for unknown format")
	}
}
