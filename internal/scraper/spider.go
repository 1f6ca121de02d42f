package scraper

import (
	"github.com/citybureau/zba-events/internal/event"
)

// Spider holds the fixed facts about one meeting series and the markup
// conventions of the page that lists it.
type Spider struct {
	Name              string
	AgencyName        string
	Timezone          string
	StartURL          string
	MeetingName       string
	Classification    event.Classification
	Location          event.Location
	DescriptionPhrase string
	ScheduleLabel     string
	StartTime         event.Clock
}

// ZoningBoard describes the Chicago Zoning Board of Appeals page.
// Minutes show the board sits from 9 AM for the whole day.
var ZoningBoard = Spider{
	Name:           "chi_zoning_board",
	AgencyName:     "Chicago Department of Planning and Development Zoning Board of Appeals",
	Timezone:       "America/Chicago",
	StartURL:       "https://www.cityofchicago.org/city/en/depts/dcd/supp_info/zoning_board_of_appeals.html",
	MeetingName:    "Zoning Board of Appeals Meeting",
	Classification: event.Commission,
	Location: event.Location{
		Name:         "City Hall",
		Address:      "121 N. LaSalle St., in City Council chambers",
		Neighborhood: "",
	},
	DescriptionPhrase: "The Zoning Board of Appeals",
	ScheduleLabel:     "Meeting Schedule",
	StartTime:         event.Clock{Hour: 9, Minute: 0},
}
