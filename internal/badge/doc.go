// Package badge publishes status badges for scraper jobs.
//
// A badge is a small SVG image recording whether a scraper's last run
// finished cleanly. Badges are produced from ECS task state change
// notifications and written to a blob store keyed by scraper name:
//
//	cfg := badge.DefaultConfig("city-scrapers-status")
//	pub := badge.NewPublisher(cfg, badge.NewS3Writer(client, cfg))
//	b, err := pub.Handle(ctx, body)
//
// Notifications for tasks that are still running produce no badge. A
// Listener receives notifications from an SQS queue and feeds them to a
// Publisher.
package badge
