package scraper

import (
	"errors"
	"fmt"
	"iter"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/citybureau/zba-events/internal/event"
	"github.com/citybureau/zba-events/internal/logger"
)

// DocumentPolicy decides what a meeting without matching documents carries.
type DocumentPolicy string

const (
	// DocumentsPlaceholder emits a single empty link, which downstream
	// consumers of the event schema expect.
	DocumentsPlaceholder DocumentPolicy = "placeholder"
	// DocumentsEmpty emits an empty list.
	DocumentsEmpty DocumentPolicy = "empty"
)

// Extractor turns a fetched schedule page into events.
// It holds no per-page state and may be shared between goroutines.
type Extractor struct {
	spider    Spider
	loc       *time.Location
	documents DocumentPolicy
	now       func() time.Time
}

// Option configures an Extractor
type Option func(*Extractor)

// WithDocumentPolicy sets how meetings without documents are represented
func WithDocumentPolicy(p DocumentPolicy) Option {
	return func(x *Extractor) { x.documents = p }
}

// WithClock sets the time source used for status classification
func WithClock(now func() time.Time) Option {
	return func(x *Extractor) { x.now = now }
}

// NewExtractor creates an Extractor for spider.
func NewExtractor(spider Spider, opts ...Option) (*Extractor, error) {
	loc, err := time.LoadLocation(spider.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", spider.Timezone, err)
	}
	x := &Extractor{
		spider:    spider,
		loc:       loc,
		documents: DocumentsPlaceholder,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(x)
	}
	switch x.documents {
	case DocumentsPlaceholder, DocumentsEmpty:
	default:
		return nil, fmt.Errorf("unknown document policy: %s", x.documents)
	}
	return x, nil
}

// Spider returns the series definition the extractor was built for
func (x *Extractor) Spider() Spider {
	return x.spider
}

// Location returns the series' timezone
func (x *Extractor) Location() *time.Location {
	return x.loc
}

// Events lazily yields the meetings on doc in document order. A pair with a
// nil event carries a *ContextError or *LineError for a skipped column or
// line; iteration continues after it. page is required: links resolve against
// it. A nil doc or page yields a single ErrNoPage.
func (x *Extractor) Events(doc *goquery.Document, page *url.URL) iter.Seq2[*event.Event, error] {
	return func(yield func(*event.Event, error) bool) {
		if doc == nil || page == nil {
			yield(nil, ErrNoPage)
			return
		}
		tree := NewTree(doc)
		description := Description(doc, x.spider.DescriptionPhrase)
		now := x.now()

		for i, column := range ScheduleColumns(tree, x.spider.ScheduleLabel) {
			year, err := ResolveYear(tree, column)
			if err != nil {
				var ce *ContextError
				if errors.As(err, &ce) {
					ce.Column = i
				}
				if !yield(nil, err) {
					return
				}
				continue
			}

			for _, line := range ColumnLines(column) {
				start, err := ParseStart(line, year, x.spider.StartTime)
				if err != nil {
					if !yield(nil, &LineError{Column: i, Line: line, Err: err}) {
						return
					}
					continue
				}

				docs := MatchDocuments(tree.Selection(column), start.Date.Month.String(), page)
				if !yield(x.Assemble(start, line, description, docs, page.String(), now), nil) {
					return
				}
			}
		}
	}
}

// Assemble builds the full event record for one meeting line.
func (x *Extractor) Assemble(start event.Moment, line, description string, docs []event.Link, source string, now time.Time) *event.Event {
	if len(docs) == 0 {
		docs = []event.Link{}
		if x.documents == DocumentsPlaceholder {
			docs = []event.Link{{}}
		}
	}

	evt := &event.Event{
		Name:           x.spider.MeetingName,
		Description:    description,
		Classification: x.spider.Classification,
		Start:          start,
		End:            event.Moment{Date: start.Date, Time: nil, Note: ""},
		AllDay:         true,
		Location:       x.spider.Location,
		Documents:      docs,
		Sources:        []event.Link{{URL: source, Note: ""}},
	}
	evt.ID = event.GenerateID(x.spider.Name, evt.Name, evt.Start)
	evt.Status = event.Classify(evt.Start.At(x.loc), line, now)
	return evt
}

// Result is a fully drained extraction
type Result struct {
	Events  []*event.Event
	Skipped []error
}

// Extract drains Events, logging and counting every skipped column and line.
func (x *Extractor) Extract(doc *goquery.Document, page *url.URL) (*Result, error) {
	if doc == nil || page == nil {
		return nil, ErrNoPage
	}
	result := &Result{Events: make([]*event.Event, 0)}

	for evt, err := range x.Events(doc, page) {
		if err != nil {
			result.Skipped = append(result.Skipped, err)
			logSkip(err)
			continue
		}
		logger.IncrCounter("scraper.events_emitted")
		result.Events = append(result.Events, evt)
	}

	logger.Info("Extracted meetings", logger.Fields{
		"url":     page.String(),
		"events":  len(result.Events),
		"skipped": len(result.Skipped),
	})
	return result, nil
}

func logSkip(err error) {
	var ce *ContextError
	var le *LineError
	switch {
	case errors.As(err, &ce):
		logger.IncrCounter("scraper.columns_skipped")
		logger.Warn("Skipping schedule column", logger.Fields{
			"column":  ce.Column,
			"heading": ce.Heading,
			"reason":  ce.Err.Error(),
		})
	case errors.As(err, &le):
		logger.IncrCounter("scraper.lines_skipped")
		logger.Warn("Skipping schedule line", logger.Fields{
			"column": le.Column,
			"line":   le.Line,
			"reason": le.Err.Error(),
		})
	default:
		logger.Warn("Skipping schedule entry", logger.Fields{"reason": err.Error()})
	}
}
