package cli

import (
	"sort"

	"github.com/citybureau/zba-events/internal/event"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate   SortOrder = "date"
	SortByStatus SortOrder = "status"
)

// statusRank orders upcoming meetings before finished ones
var statusRank = map[event.Status]int{
	event.StatusConfirmed: 0,
	event.StatusTentative: 1,
	event.StatusCancelled: 2,
	event.StatusPassed:    3,
}

// sortEvents sorts a slice of events based on the specified sort order.
// The sort is stable so meetings on the same date keep page order.
func sortEvents(events []*event.Event, sortOrder SortOrder) {
	switch sortOrder {
	case SortByDate:
		sort.SliceStable(events, func(i, j int) bool {
			return compareByDate(events[i], events[j])
		})
	case SortByStatus:
		sort.SliceStable(events, func(i, j int) bool {
			ri, rj := statusRank[events[i].Status], statusRank[events[j].Status]
			if ri != rj {
				return ri < rj
			}
			// If statuses are equal, sort by date
			return compareByDate(events[i], events[j])
		})
	}
}

// compareByDate compares two events by their start date
// Returns true if event i should come before event j
func compareByDate(i, j *event.Event) bool {
	return i.Start.Date.Before(j.Start.Date)
}
