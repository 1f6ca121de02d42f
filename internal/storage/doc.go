// Package storage persists extracted meetings.
//
// A Sink upserts events by their deterministic ID and reports whether each
// one was seen for the first time. Three drivers are available: a JSON
// snapshot file (the default, stored under ~/.local/share/zba-events/), an
// embedded SQLite database and a MongoDB collection.
package storage
