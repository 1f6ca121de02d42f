package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/citybureau/zba-events/internal/event"
)

const snapshotFile = "snapshot.json"

// JSONStore keeps all events in a single snapshot file. Upserts are applied
// in memory and written out by Close.
type JSONStore struct {
	mu       sync.Mutex
	dataDir  string
	snapshot *event.Snapshot
	dirty    bool
}

// NewJSONStore creates the data directory if needed and loads the existing snapshot
func NewJSONStore(dataDir string) (*JSONStore, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &JSONStore{dataDir: dataDir}
	snapshot, err := s.LoadSnapshot()
	if err != nil {
		return nil, err
	}
	s.snapshot = snapshot
	return s, nil
}

// Path returns the snapshot file location
func (s *JSONStore) Path() string {
	return filepath.Join(s.dataDir, snapshotFile)
}

// LoadSnapshot reads the snapshot from disk. A missing file yields an empty snapshot.
func (s *JSONStore) LoadSnapshot() (*event.Snapshot, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return event.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot event.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	if snapshot.Events == nil {
		snapshot.Events = make(map[string]*event.Event)
	}

	return &snapshot, nil
}

// SaveSnapshot writes snapshot to disk, stamping its update time
func (s *JSONStore) SaveSnapshot(snapshot *event.Snapshot) error {
	snapshot.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	return nil
}

// Upsert records evt in the in-memory snapshot
func (s *JSONStore) Upsert(_ context.Context, evt *event.Event) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dirty = true
	return s.snapshot.Apply(evt), nil
}

// Get retrieves an event by ID from the in-memory snapshot
func (s *JSONStore) Get(_ context.Context, id string) (*event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if evt, exists := s.snapshot.Events[id]; exists {
		return evt, nil
	}
	return nil, notFound(id)
}

// Upcoming returns stored events starting on or after from, ordered by date
func (s *JSONStore) Upcoming(_ context.Context, from event.Date) ([]*event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := make([]*event.Event, 0)
	for _, evt := range s.snapshot.Events {
		if !evt.Start.Date.Before(from) {
			events = append(events, evt)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Start.Date != events[j].Start.Date {
			return events[i].Start.Date.Before(events[j].Start.Date)
		}
		return events[i].ID < events[j].ID
	})
	return events, nil
}

// Snapshot returns the in-memory snapshot
func (s *JSONStore) Snapshot() *event.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Close saves the snapshot if anything was upserted
func (s *JSONStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}
	if err := s.SaveSnapshot(s.snapshot); err != nil {
		return err
	}
	s.dirty = false
	return nil
}
