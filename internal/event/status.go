package event

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a meeting at extraction time
type Status string

const (
	StatusCancelled Status = "cancelled"
	StatusTentative Status = "tentative"
	StatusConfirmed Status = "confirmed"
	StatusPassed    Status = "passed"
)

// ConfirmedWindow is how far ahead a scheduled meeting counts as confirmed
// rather than tentative.
const ConfirmedWindow = 7 * 24 * time.Hour

// Classify labels a meeting starting at start. text is any free text shown
// next to the meeting on the source page; a mention of a cancellation or
// rescheduling wins over the date checks.
func Classify(start time.Time, text string, now time.Time) Status {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "cancel") || strings.Contains(lower, "rescheduled") {
		return StatusCancelled
	}
	if start.Before(now) {
		return StatusPassed
	}
	if start.Sub(now) <= ConfirmedWindow {
		return StatusConfirmed
	}
	return StatusTentative
}
