// Package filter narrows extracted meetings down before they are reported.
//
// Filters combine criteria with AND:
//   - Date range (inclusive, by meeting start date)
//   - Statuses (any of the listed lifecycle statuses)
//   - Documents only (meetings with at least one real document)
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.Statuses = []event.Status{event.StatusTentative, event.StatusConfirmed}
//	upcoming := f.Apply(events)
//
// Filtering only affects what is printed and exported; every extracted
// meeting is still stored.
package filter

import (
	"fmt"
	"strings"

	"github.com/citybureau/zba-events/internal/event"
)

// Filter represents meeting filtering criteria
type Filter struct {
	DateFrom *event.Date `json:"date_from,omitempty"`
	DateTo   *event.Date `json:"date_to,omitempty"`

	Statuses []event.Status `json:"statuses,omitempty"`

	// Only keep meetings with a posted agenda, minutes or other document
	DocumentsOnly bool `json:"documents_only,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all events until criteria are added.
func NewFilter() *Filter {
	return &Filter{Statuses: []event.Status{}}
}

// IsEmpty checks if the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.Statuses) == 0 &&
		!f.DocumentsOnly
}

// Matches checks if an event matches all active filter criteria.
// An empty filter matches all events.
func (f *Filter) Matches(evt *event.Event) bool {
	if f.IsEmpty() {
		return true
	}

	start := evt.Start.Date
	if f.DateFrom != nil && start.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && f.DateTo.Before(start) {
		return false
	}

	if len(f.Statuses) > 0 {
		matched := false
		for _, status := range f.Statuses {
			if evt.Status == status {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if f.DocumentsOnly && !evt.HasDocuments() {
		return false
	}

	return true
}

// Apply returns the events that match f, keeping their order.
// If the filter is empty, returns the original list unchanged.
func (f *Filter) Apply(events []*event.Event) []*event.Event {
	if f.IsEmpty() {
		return events
	}

	filtered := make([]*event.Event, 0, len(events))
	for _, evt := range events {
		if f.Matches(evt) {
			filtered = append(filtered, evt)
		}
	}
	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "From: 2022-01-01 | To: 2022-06-30 | Statuses: tentative, confirmed | Documents only"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string
	if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.DateFrom))
	}
	if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.DateTo))
	}
	if len(f.Statuses) > 0 {
		names := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			names[i] = string(s)
		}
		parts = append(parts, fmt.Sprintf("Statuses: %s", strings.Join(names, ", ")))
	}
	if f.DocumentsOnly {
		parts = append(parts, "Documents only")
	}

	return strings.Join(parts, " | ")
}
