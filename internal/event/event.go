package event

// Classification tags the kind of public body holding a meeting.
type Classification string

const (
	Commission Classification = "Commission"
	Board      Classification = "Board"
	Committee  Classification = "Committee"
)

// Location describes where a meeting takes place
type Location struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	Neighborhood string `json:"neighborhood"`
}

// Link is a document or source attached to an event.
// The zero Link is the placeholder entry emitted when a meeting has no documents.
type Link struct {
	URL  string `json:"url,omitempty"`
	Note string `json:"note,omitempty"`
}

// IsZero reports whether l is the placeholder entry
func (l Link) IsZero() bool {
	return l.URL == "" && l.Note == ""
}

// Event is one normalized meeting record
type Event struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"event_description"`
	Classification Classification `json:"classification"`
	Start          Moment         `json:"start"`
	End            Moment         `json:"end"`
	AllDay         bool           `json:"all_day"`
	Location       Location       `json:"location"`
	Documents      []Link         `json:"documents"`
	Sources        []Link         `json:"sources"`
	Status         Status         `json:"status"`
}

// SourceURL returns the page the event was extracted from, or "" if unknown.
func (e *Event) SourceURL() string {
	if len(e.Sources) == 0 {
		return ""
	}
	return e.Sources[0].URL
}

// HasDocuments reports whether any real (non-placeholder) document is attached
func (e *Event) HasDocuments() bool {
	for _, doc := range e.Documents {
		if !doc.IsZero() {
			return true
		}
	}
	return false
}
