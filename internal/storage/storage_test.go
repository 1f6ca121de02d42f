package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/citybureau/zba-events/internal/config"
	"github.com/citybureau/zba-events/internal/event"
)

func testEvent(month time.Month, day int) *event.Event {
	start := event.Moment{Date: event.Date{Year: 2022, Month: month, Day: day}, Time: &event.Clock{Hour: 9}}
	return &event.Event{
		ID:             event.GenerateID("chi_zoning_board", "Zoning Board of Appeals Meeting", start),
		Name:           "Zoning Board of Appeals Meeting",
		Classification: event.Commission,
		Start:          start,
		End:            event.Moment{Date: start.Date},
		AllDay:         true,
		Location:       event.Location{Name: "City Hall", Address: "121 N. LaSalle St."},
		Documents:      []event.Link{{}},
		Sources:        []event.Link{{URL: "https://example.com/zba.html"}},
		Status:         event.StatusTentative,
	}
}

// sinkContract runs the behaviour every Sink must share
func sinkContract(t *testing.T, sink Sink) {
	t.Helper()
	ctx := context.Background()

	jan := testEvent(time.January, 5)
	feb := testEvent(time.February, 2)

	for _, evt := range []*event.Event{jan, feb} {
		created, err := sink.Upsert(ctx, evt)
		if err != nil {
			t.Fatalf("Upsert(%s) error: %v", evt.ID, err)
		}
		if !created {
			t.Errorf("Upsert(%s) created = false on first insert", evt.ID)
		}
	}

	updated := *jan
	updated.Status = event.StatusPassed
	updated.Documents = []event.Link{{URL: "https://example.com/jan.pdf", Note: "Agenda"}}
	created, err := sink.Upsert(ctx, &updated)
	if err != nil {
		t.Fatalf("Upsert(updated) error: %v", err)
	}
	if created {
		t.Error("Upsert of an existing ID reported created = true")
	}

	got, err := sink.Get(ctx, jan.ID)
	if err != nil {
		t.Fatalf("Get(%s) error: %v", jan.ID, err)
	}
	if got.Status != event.StatusPassed {
		t.Errorf("stored status = %q, want %q", got.Status, event.StatusPassed)
	}
	if len(got.Documents) != 1 || got.Documents[0].Note != "Agenda" {
		t.Errorf("stored documents = %+v", got.Documents)
	}
	if got.Start.Date != jan.Start.Date || got.Start.Time == nil || *got.Start.Time != *jan.Start.Time {
		t.Errorf("stored start = %+v, want %+v", got.Start, jan.Start)
	}

	if _, err := sink.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	all, err := sink.Upcoming(ctx, event.Date{Year: 2022, Month: time.January, Day: 1})
	if err != nil {
		t.Fatalf("Upcoming() error: %v", err)
	}
	if len(all) != 2 || all[0].ID != jan.ID || all[1].ID != feb.ID {
		t.Errorf("Upcoming(2022-01-01) = %d events, want January then February", len(all))
	}

	later, err := sink.Upcoming(ctx, event.Date{Year: 2022, Month: time.February, Day: 1})
	if err != nil {
		t.Fatalf("Upcoming() error: %v", err)
	}
	if len(later) != 1 || later[0].Start.Date.String() != "2022-02-02" {
		t.Errorf("Upcoming(2022-02-01) = %d events, want only 2022-02-02", len(later))
	}
}

func TestJSONStore(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewJSONStore(tmpDir)
	if err != nil {
		t.Fatalf("NewJSONStore() error: %v", err)
	}
	sinkContract(t, store)

	if err := store.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "snapshot.json")); err != nil {
		t.Fatalf("snapshot file not written: %v", err)
	}

	reopened, err := NewJSONStore(tmpDir)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	snap := reopened.Snapshot()
	if len(snap.Events) != 2 {
		t.Errorf("reloaded %d events, want 2", len(snap.Events))
	}
	if snap.UpdatedAt == "" {
		t.Error("reloaded snapshot has no UpdatedAt")
	}
	if len(snap.ChangeLog) == 0 {
		t.Error("reloaded snapshot has no change log")
	}

	created, err := reopened.Upsert(context.Background(), testEvent(time.January, 5))
	if err != nil || created {
		t.Errorf("Upsert after reload = (%v, %v), want (false, nil)", created, err)
	}
}

func TestJSONStore_CloseWithoutChanges(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewJSONStore(tmpDir)
	if err != nil {
		t.Fatalf("NewJSONStore() error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Errorf("expected no snapshot file, stat error = %v", err)
	}
}

func TestJSONStore_CorruptSnapshot(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "snapshot.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewJSONStore(tmpDir); err == nil {
		t.Error("NewJSONStore() expected error for corrupt snapshot")
	}
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error: %v", err)
	}
	defer store.Close()

	sinkContract(t, store)
}

func TestSQLiteStore_CreatesDataDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-yet-created", "nested", "events.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestOpen(t *testing.T) {
	storageIn := func(driver, dir string) config.Storage {
		cfg := config.Default().Storage
		cfg.Driver = driver
		cfg.DataDir = dir
		return cfg
	}

	tests := []struct {
		name    string
		driver  string
		fresh   bool
		wantErr bool
	}{
		{name: "json", driver: config.DriverJSON},
		{name: "default driver", driver: ""},
		{name: "sqlite", driver: config.DriverSQLite},
		{name: "json in missing data dir", driver: config.DriverJSON, fresh: true},
		{name: "sqlite in missing data dir", driver: config.DriverSQLite, fresh: true},
		{name: "unknown", driver: "csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.fresh {
				dir = filepath.Join(dir, "not-yet-created")
			}

			sink, err := Open(context.Background(), storageIn(tt.driver, dir))
			if tt.wantErr {
				if err == nil {
					t.Error("Open() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error: %v", err)
			}
			defer sink.Close()

			if _, err := sink.Upsert(context.Background(), testEvent(time.March, 2)); err != nil {
				t.Errorf("Upsert() error: %v", err)
			}
			if _, err := os.Stat(dir); err != nil {
				t.Errorf("data directory not created: %v", err)
			}
		})
	}
}
