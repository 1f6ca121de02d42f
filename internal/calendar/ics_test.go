package calendar

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/citybureau/zba-events/internal/event"
	"github.com/emersion/go-ical"
)

func testEvent() *event.Event {
	start := event.Moment{Date: event.Date{Year: 2022, Month: time.March, Day: 3}, Time: &event.Clock{Hour: 9}}
	return &event.Event{
		ID:             event.GenerateID("chi_zoning_board", "Zoning Board of Appeals Meeting", start),
		Name:           "Zoning Board of Appeals Meeting",
		Description:    "The Zoning Board of Appeals hears appeals.",
		Classification: event.Commission,
		Start:          start,
		End:            event.Moment{Date: start.Date},
		AllDay:         true,
		Location: event.Location{
			Name:    "City Hall",
			Address: "121 N. LaSalle St., in City Council chambers",
		},
		Documents: []event.Link{
			{URL: "https://www.cityofchicago.org/docs/march-agenda.pdf", Note: "Agenda"},
		},
		Sources: []event.Link{{URL: "https://www.cityofchicago.org/zba.html"}},
		Status:  event.StatusTentative,
	}
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	stamp := time.Date(2022, time.February, 1, 15, 0, 0, 0, time.UTC)

	if err := Encode(&buf, []*event.Event{testEvent()}, stamp); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	out := buf.String()
	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + ProductID,
		"BEGIN:VEVENT",
		"DTSTART;VALUE=DATE:20220303",
		"DTEND;VALUE=DATE:20220304",
		"SUMMARY:Zoning Board of Appeals Meeting",
		"STATUS:TENTATIVE",
		"CATEGORIES:Commission",
		"URL:https://www.cityofchicago.org/zba.html",
		"ATTACH:https://www.cityofchicago.org/docs/march-agenda.pdf",
		"END:VCALENDAR",
	}
	for _, field := range requiredFields {
		if !strings.Contains(out, field) {
			t.Errorf("ICS missing field %q", field)
		}
	}
	if !strings.Contains(out, "\r\n") {
		t.Error("ICS should use \\r\\n line endings")
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	evt := testEvent()
	placeholder := testEvent()
	placeholder.ID += "-2"
	placeholder.Documents = []event.Link{{}}
	placeholder.Status = event.StatusCancelled

	if err := Encode(&buf, []*event.Event{evt, placeholder}, time.Now()); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	cal, err := ical.NewDecoder(&buf).Decode()
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("decoded %d events, want 2", len(events))
	}

	loc, err := events[0].Props.Text(ical.PropLocation)
	if err != nil {
		t.Fatalf("reading LOCATION: %v", err)
	}
	if loc != "City Hall, 121 N. LaSalle St., in City Council chambers" {
		t.Errorf("LOCATION = %q", loc)
	}

	uid, _ := events[0].Props.Text(ical.PropUID)
	if uid != UID(evt) {
		t.Errorf("UID = %q, want %q", uid, UID(evt))
	}

	if n := len(events[1].Props.Values(ical.PropAttach)); n != 0 {
		t.Errorf("placeholder document produced %d ATTACH properties", n)
	}
	status, _ := events[1].Props.Text(ical.PropStatus)
	if status != "CANCELLED" {
		t.Errorf("STATUS = %q, want CANCELLED", status)
	}
}

func TestUID(t *testing.T) {
	a := testEvent()
	b := testEvent()
	if UID(a) != UID(b) {
		t.Error("UID should be deterministic")
	}

	b.ID = "chi_zoning_board/202204070900/x/zoning_board_of_appeals_meeting"
	if UID(a) == UID(b) {
		t.Error("UID should differ for different event IDs")
	}
	if !strings.HasSuffix(UID(a), "@zba-events") {
		t.Errorf("UID = %q, want @zba-events suffix", UID(a))
	}
}
