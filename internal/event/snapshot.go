package event

import (
	"time"
)

// Snapshot represents the set of events known after a run
type Snapshot struct {
	Events    map[string]*Event `json:"events"`     // keyed by Event.ID
	ChangeLog []*EventChange    `json:"change_log"` // Recent changes
	UpdatedAt string            `json:"updated_at"` // RFC3339 timestamp
}

// MaxChangeLog bounds the number of changes kept in a snapshot
const MaxChangeLog = 200

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Events:    make(map[string]*Event),
		ChangeLog: make([]*EventChange, 0),
	}
}

// Apply records evt in the snapshot and returns whether it was new
func (s *Snapshot) Apply(evt *Event) bool {
	old, exists := s.Events[evt.ID]
	s.ChangeLog = append(s.ChangeLog, DetectChanges(old, evt)...)
	if len(s.ChangeLog) > MaxChangeLog {
		s.ChangeLog = s.ChangeLog[len(s.ChangeLog)-MaxChangeLog:]
	}
	s.Events[evt.ID] = evt
	return !exists
}

// EventChange represents a change detected in an event
type EventChange struct {
	EventID    string    `json:"event_id"`
	ChangeType string    `json:"change_type"` // "new", "status", "documents", "description"
	OldValue   string    `json:"old_value"`
	NewValue   string    `json:"new_value"`
	DetectedAt time.Time `json:"detected_at"`
}

// DetectChanges compares two versions of the same event
func DetectChanges(previous, current *Event) []*EventChange {
	now := time.Now().UTC()

	if previous == nil {
		return []*EventChange{
			{
				EventID:    current.ID,
				ChangeType: "new",
				NewValue:   current.Start.Date.String(),
				DetectedAt: now,
			},
		}
	}

	var changes []*EventChange

	if previous.Status != current.Status {
		changes = append(changes, &EventChange{
			EventID:    current.ID,
			ChangeType: "status",
			OldValue:   string(previous.Status),
			NewValue:   string(current.Status),
			DetectedAt: now,
		})
	}

	if oldDocs, newDocs := documentURLs(previous), documentURLs(current); oldDocs != newDocs {
		changes = append(changes, &EventChange{
			EventID:    current.ID,
			ChangeType: "documents",
			OldValue:   oldDocs,
			NewValue:   newDocs,
			DetectedAt: now,
		})
	}

	if previous.Description != current.Description {
		changes = append(changes, &EventChange{
			EventID:    current.ID,
			ChangeType: "description",
			OldValue:   previous.Description,
			NewValue:   current.Description,
			DetectedAt: now,
		})
	}

	return changes
}

func documentURLs(evt *Event) string {
	var out string
	for i, doc := range evt.Documents {
		if i > 0 {
			out += " "
		}
		out += doc.URL
	}
	return out
}
