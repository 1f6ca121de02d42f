// Package calendar exports meetings as an iCalendar feed.
package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/citybureau/zba-events/internal/event"
	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

const ProductID = "-//City Bureau//zba-events//EN"

// UID returns the calendar UID for an event. It is derived from the event ID
// so calendar clients update an entry instead of duplicating it.
func UID(evt *event.Event) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(evt.ID)).String() + "@zba-events"
}

// Build creates a VCALENDAR with one all-day VEVENT per event.
// stamp is used as DTSTAMP on every entry.
func Build(events []*event.Event, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	cal.Props.SetText(ical.PropMethod, "PUBLISH")

	for _, evt := range events {
		cal.Children = append(cal.Children, buildEvent(evt, stamp).Component)
	}
	return cal
}

// Encode writes events to w as an iCalendar document
func Encode(w io.Writer, events []*event.Event, stamp time.Time) error {
	if err := ical.NewEncoder(w).Encode(Build(events, stamp)); err != nil {
		return fmt.Errorf("encoding calendar: %w", err)
	}
	return nil
}

func buildEvent(evt *event.Event, stamp time.Time) *ical.Event {
	e := ical.NewEvent()
	e.Props.SetText(ical.PropUID, UID(evt))
	e.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())

	// all-day events end on the following day (exclusive)
	start := evt.Start.Date.In(time.UTC)
	e.Props.SetDate(ical.PropDateTimeStart, start)
	e.Props.SetDate(ical.PropDateTimeEnd, evt.End.Date.AddDays(1).In(time.UTC))

	e.Props.SetText(ical.PropSummary, evt.Name)
	if desc := description(evt); desc != "" {
		e.Props.SetText(ical.PropDescription, desc)
	}
	e.Props.SetText(ical.PropLocation, location(evt.Location))
	e.Props.SetText(ical.PropStatus, icalStatus(evt.Status))
	e.Props.SetText(ical.PropTransparency, "OPAQUE")
	if evt.Classification != "" {
		e.Props.SetText(ical.PropCategories, string(evt.Classification))
	}

	if src := evt.SourceURL(); src != "" {
		e.Props.Set(uriProp(ical.PropURL, src))
	}

	for _, doc := range evt.Documents {
		if doc.IsZero() || doc.URL == "" {
			continue
		}
		e.Props.Add(uriProp(ical.PropAttach, doc.URL))
	}

	return e
}

// uriProp builds a property whose default value type is already URI
func uriProp(name, uri string) *ical.Prop {
	prop := ical.NewProp(name)
	prop.Value = uri
	return prop
}

func description(evt *event.Event) string {
	parts := make([]string, 0, 1+len(evt.Documents))
	if evt.Description != "" {
		parts = append(parts, evt.Description)
	}
	if evt.Start.Time != nil {
		parts = append(parts, "Starts at "+evt.Start.Time.String()+".")
	}
	for _, doc := range evt.Documents {
		if !doc.IsZero() {
			parts = append(parts, fmt.Sprintf("%s: %s", doc.Note, doc.URL))
		}
	}
	return strings.Join(parts, "\n")
}

func location(loc event.Location) string {
	switch {
	case loc.Name == "":
		return loc.Address
	case loc.Address == "":
		return loc.Name
	}
	return loc.Name + ", " + loc.Address
}

func icalStatus(s event.Status) string {
	switch s {
	case event.StatusCancelled:
		return "CANCELLED"
	case event.StatusTentative:
		return "TENTATIVE"
	}
	return "CONFIRMED"
}
