package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/citybureau/zba-events/internal/event"
)

// ParseDateRange parses a date range string into inclusive start and end dates.
//
// Supported formats:
//   - "2022" - Entire year
//   - "March 2022" or "Mar 2022" - Entire month
//   - "2022-01-15..2022-03-01" - Explicit range; either side may be empty
//
// Either returned date may be nil for an open-ended range.
func ParseDateRange(input string) (*event.Date, *event.Date, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil, fmt.Errorf("date range cannot be empty")
	}

	// Format 1: "2022-01-15..2022-03-01"
	if lo, hi, ok := strings.Cut(input, ".."); ok {
		from, err := parseOptionalDate(lo)
		if err != nil {
			return nil, nil, err
		}
		to, err := parseOptionalDate(hi)
		if err != nil {
			return nil, nil, err
		}
		if from == nil && to == nil {
			return nil, nil, fmt.Errorf("date range needs at least one date")
		}
		if from != nil && to != nil && to.Before(*from) {
			return nil, nil, fmt.Errorf("start date must be before end date")
		}
		return from, to, nil
	}

	// Format 2: "2022"
	if year, err := strconv.Atoi(input); err == nil {
		if year < 1 || year > 9999 {
			return nil, nil, fmt.Errorf("invalid year: %s", input)
		}
		from := event.Date{Year: year, Month: time.January, Day: 1}
		to := event.Date{Year: year, Month: time.December, Day: 31}
		return &from, &to, nil
	}

	// Format 3: "March 2022"
	for _, layout := range []string{"January 2006", "Jan 2006"} {
		if t, err := time.Parse(layout, input); err == nil {
			from := event.DateOf(t)
			to := event.DateOf(t.AddDate(0, 1, -1))
			return &from, &to, nil
		}
	}

	return nil, nil, fmt.Errorf("invalid date range format. Use '2022', 'March 2022', or '2022-01-15..2022-03-01'")
}

func parseOptionalDate(s string) (*event.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := event.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %s", s)
	}
	return &d, nil
}

// ParseStatuses parses a comma-separated list of meeting statuses
func ParseStatuses(input string) ([]event.Status, error) {
	var statuses []event.Status
	for _, name := range strings.Split(input, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		status := event.Status(name)
		switch status {
		case event.StatusCancelled, event.StatusTentative, event.StatusConfirmed, event.StatusPassed:
			statuses = append(statuses, status)
		default:
			return nil, fmt.Errorf("unknown status: %s", name)
		}
	}
	if len(statuses) == 0 {
		return nil, fmt.Errorf("status list cannot be empty")
	}
	return statuses, nil
}
