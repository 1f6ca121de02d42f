package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLogger_Log(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelInfo, &buf)

	tests := []struct {
		name    string
		level   Level
		message string
		fields  Fields
		err     error
		want    bool
	}{
		{
			name:    "info message",
			level:   LevelInfo,
			message: "extraction finished",
			fields:  Fields{"events": 24},
			want:    true,
		},
		{
			name:    "debug below threshold",
			level:   LevelDebug,
			message: "resolved year",
			want:    false,
		},
		{
			name:    "error with err",
			level:   LevelError,
			message: "fetch failed",
			err:     errors.New("connection refused"),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()

			l.log(tt.level, tt.message, tt.fields, tt.err)

			logged := buf.Len() > 0
			if logged != tt.want {
				t.Fatalf("log() logged = %v, want %v", logged, tt.want)
			}
			if !logged {
				return
			}

			var entry LogEntry
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
			}
			if entry.Message != tt.message {
				t.Errorf("Message = %q, want %q", entry.Message, tt.message)
			}
			if tt.err != nil && entry.Error != tt.err.Error() {
				t.Errorf("Error = %q, want %q", entry.Error, tt.err.Error())
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"Error", LevelError, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		minLevel  Level
		logLevel  Level
		shouldLog bool
	}{
		{"debug logs at debug", LevelDebug, LevelDebug, true},
		{"warn logs at info", LevelInfo, LevelWarn, true},
		{"info doesn't log at warn", LevelWarn, LevelInfo, false},
		{"error always logs", LevelError, LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			New(tt.minLevel, &buf).log(tt.logLevel, "test", nil, nil)

			if logged := buf.Len() > 0; logged != tt.shouldLog {
				t.Errorf("shouldLog = %v, want %v", logged, tt.shouldLog)
			}
		})
	}
}

func TestSetDefault(t *testing.T) {
	var buf bytes.Buffer
	prev := defaultLogger
	SetDefault(New(LevelDebug, &buf))
	defer SetDefault(prev)

	Warn("Skipping schedule column", Fields{"column": 2})

	if !strings.Contains(buf.String(), `"level":"WARN"`) {
		t.Errorf("default logger output = %s, want a WARN entry", buf.String())
	}
}

func TestMetrics_Counter(t *testing.T) {
	m := NewMetrics()

	m.IncrCounter("scraper.lines_skipped")
	m.IncrCounter("scraper.lines_skipped")

	counters := m.GetSnapshot()["counters"].(map[string]int64)
	if counters["scraper.lines_skipped"] != 2 {
		t.Errorf("Counter = %v, want 2", counters["scraper.lines_skipped"])
	}
}

func TestMetrics_Gauge(t *testing.T) {
	m := NewMetrics()

	m.SetGauge("scraper.columns", 3)
	m.SetGauge("scraper.columns", 4)

	gauges := m.GetSnapshot()["gauges"].(map[string]float64)
	if gauges["scraper.columns"] != 4 {
		t.Errorf("Gauge = %v, want 4", gauges["scraper.columns"])
	}
}

func TestMetrics_Timing(t *testing.T) {
	m := NewMetrics()

	m.RecordTiming("scraper.fetch", 100*time.Millisecond)
	m.RecordTiming("scraper.fetch", 300*time.Millisecond)

	timings := m.GetSnapshot()["timings"].(map[string]map[string]interface{})
	fetch := timings["scraper.fetch"]

	if fetch["count"].(int) != 2 {
		t.Errorf("Timing count = %v, want 2", fetch["count"])
	}
	if fetch["average"].(string) != "200ms" {
		t.Errorf("Average timing = %v, want 200ms", fetch["average"])
	}
}
