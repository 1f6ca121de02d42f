package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/citybureau/zba-events/internal/config"
	"github.com/citybureau/zba-events/internal/event"
)

// ErrNotFound is returned by Get for unknown event IDs
var ErrNotFound = errors.New("event not found")

// Sink receives extracted events one at a time. Deduplication happens here,
// keyed by event.Event.ID.
type Sink interface {
	// Upsert stores evt, replacing any earlier version, and reports whether
	// the ID was new.
	Upsert(ctx context.Context, evt *event.Event) (bool, error)
	// Get returns the stored event with the given ID
	Get(ctx context.Context, id string) (*event.Event, error)
	// Upcoming returns stored events starting on or after from, ordered by
	// start date and then ID
	Upcoming(ctx context.Context, from event.Date) ([]*event.Event, error)
	// Close flushes pending writes and releases resources
	Close() error
}

// Open creates the sink selected by cfg.Driver.
func Open(ctx context.Context, cfg config.Storage) (Sink, error) {
	switch cfg.Driver {
	case config.DriverJSON, "":
		return NewJSONStore(cfg.DataDir)
	case config.DriverSQLite:
		return NewSQLiteStore(cfg.SQLitePath())
	case config.DriverMongo:
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	}
	return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
