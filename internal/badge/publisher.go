package badge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/citybureau/zba-events/internal/logger"
)

// Badge describes a published badge
type Badge struct {
	Scraper string
	Status  Status
	Date    string
	Key     string
	SVG     []byte
}

// Publisher turns task state change notifications into stored badges
type Publisher struct {
	cfg    Config
	writer Writer
	now    func() time.Time
}

// NewPublisher creates a publisher writing through w
func NewPublisher(cfg Config, w Writer) *Publisher {
	return &Publisher{cfg: cfg, writer: w, now: time.Now}
}

// WithClock returns a copy of p that reads the current time from now.
func (p *Publisher) WithClock(now func() time.Time) *Publisher {
	cp := *p
	cp.now = now
	return &cp
}

// Handle processes one raw notification. It returns (nil, nil) when the
// task reports a status other than STOPPED.
func (p *Publisher) Handle(ctx context.Context, raw []byte) (*Badge, error) {
	n, err := ParseNotification(raw)
	if err != nil {
		return nil, err
	}
	return p.Publish(ctx, n)
}

// Publish renders and stores the badge for n.
func (p *Publisher) Publish(ctx context.Context, n *Notification) (*Badge, error) {
	if n.DetailType != TaskStateChange {
		return nil, fmt.Errorf("%w: detail-type %q", ErrUnrecognizedEvent, n.DetailType)
	}

	if n.Detail.LastStatus == "" {
		return nil, fmt.Errorf("%w: missing detail.lastStatus", ErrUnrecognizedEvent)
	}
	if !n.Stopped() {
		logger.Info("Task has not stopped, skipping badge", logger.Fields{
			"last_status": n.Detail.LastStatus,
		})
		return nil, nil
	}

	code, err := n.ExitCode()
	if err != nil {
		return nil, err
	}

	scraper, err := ScraperName(n.Detail.TaskDefinitionArn)
	if err != nil {
		return nil, err
	}

	status := StatusForExit(code)
	date := p.cfg.Date(p.now())
	b := &Badge{
		Scraper: scraper,
		Status:  status,
		Date:    date,
		Key:     scraper + ".svg",
		SVG:     Render(status, p.cfg.Color(status), date),
	}

	obj := &Object{
		Key:          b.Key,
		Body:         b.SVG,
		CacheControl: p.cfg.CacheControl,
		ContentType:  p.cfg.ContentType,
	}
	start := time.Now()
	if err := p.writer.Put(ctx, obj); err != nil {
		logger.IncrCounter("badge.write_errors")
		return nil, fmt.Errorf("writing badge for %s: %w", scraper, err)
	}
	logger.RecordTiming("badge.write", time.Since(start))
	logger.IncrCounter("badge.published")

	logger.Info("Published status badge", logger.Fields{
		"scraper":   scraper,
		"status":    string(status),
		"exit_code": code,
		"key":       b.Key,
	})
	return b, nil
}

// IsPermanent reports whether err comes from a malformed notification that
// will never succeed on redelivery.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrUnrecognizedEvent) || errors.Is(err, ErrMissingScraper)
}
