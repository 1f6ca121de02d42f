// Package cli implements the command-line interface for zba-events.
//
// The cli package provides the Cobra-based CLI. The scrape command fetches
// the Zoning Board of Appeals page (or reads a saved copy), extracts the
// meeting schedule, stores events in the configured sink and reports the
// meetings it had not seen before. The badge commands publish scraper
// status badges from ECS task state change notifications, either one at a
// time or by listening on an SQS queue.
package cli
