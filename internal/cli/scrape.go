package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/citybureau/zba-events/internal/calendar"
	"github.com/citybureau/zba-events/internal/event"
	"github.com/citybureau/zba-events/internal/filter"
	"github.com/citybureau/zba-events/internal/logger"
	"github.com/citybureau/zba-events/internal/scraper"
	"github.com/citybureau/zba-events/internal/storage"
	"github.com/spf13/cobra"
)

var (
	flagFile   string
	flagFormat string
	flagICS    string
	flagSort   string
	flagDryRun bool

	flagStatus        string
	flagBetween       string
	flagWithDocuments bool
)

func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Extract meetings and report new ones",
		Long: `Fetch the Zoning Board of Appeals page, extract every scheduled meeting
and store it. Exits with code 2 when meetings were found that had not been
stored before.`,
		RunE: runScrape,
	}

	cmd.Flags().StringVar(&flagFile, "file", "", "Read the page from a saved HTML file instead of fetching it")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&flagICS, "ics", "", "Also write all meetings to this iCalendar file")
	cmd.Flags().StringVar(&flagSort, "sort", "date", "Sort order: date or status")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Extract and print meetings without storing them")
	cmd.Flags().StringVar(&flagStatus, "status", "", "Only report meetings with these statuses (comma-separated)")
	cmd.Flags().StringVar(&flagBetween, "between", "", "Only report meetings in a date range: 2022, 'March 2022' or 2022-01-01..2022-06-30")
	cmd.Flags().BoolVar(&flagWithDocuments, "with-documents", false, "Only report meetings with posted documents")

	return cmd
}

// runScrape is the main command logic
func runScrape(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}
	order := SortOrder(strings.ToLower(flagSort))
	if order != SortByDate && order != SortByStatus {
		return fmt.Errorf("invalid sort order: %s (must be 'date' or 'status')", flagSort)
	}

	f, err := buildFilter()
	if err != nil {
		return err
	}

	doc, page, err := loadPage(ctx)
	if err != nil {
		return err
	}

	x, err := scraper.NewExtractor(scraper.ZoningBoard,
		scraper.WithDocumentPolicy(scraper.DocumentPolicy(cfg.Scraper.EmptyDocuments)))
	if err != nil {
		return fmt.Errorf("initializing extractor: %w", err)
	}

	extracted, err := x.Extract(doc, page)
	if err != nil {
		return fmt.Errorf("extracting meetings: %w", err)
	}
	sortEvents(extracted.Events, order)

	// every meeting is stored; the filter only narrows what is reported
	var newEvents []*event.Event
	if !flagDryRun {
		newEvents, err = store(ctx, extracted.Events)
		if err != nil {
			return err
		}
	}

	result := &OutputResult{
		CheckedAt: time.Now().UTC(),
		Source:    page.String(),
		Events:    f.Apply(extracted.Events),
		NewEvents: f.Apply(newEvents),
		Skipped:   skipReasons(extracted.Skipped),
	}
	result.EventCount = len(result.Events)
	result.NewCount = len(result.NewEvents)
	if !f.IsEmpty() {
		result.Filter = f.String()
	}

	if flagICS != "" {
		if err := writeCalendar(flagICS, result.Events); err != nil {
			return err
		}
	}

	if err := WriteOutput(cmd.OutOrStdout(), result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	logger.SetGauge("scraper.events", float64(len(extracted.Events)))
	logger.SetGauge("scraper.new_events", float64(len(newEvents)))
	logMetrics()

	if result.NewCount > 0 {
		return ErrNewEvents
	}
	return nil
}

func buildFilter() (*filter.Filter, error) {
	f := filter.NewFilter()
	if flagStatus != "" {
		statuses, err := filter.ParseStatuses(flagStatus)
		if err != nil {
			return nil, err
		}
		f.Statuses = statuses
	}
	if flagBetween != "" {
		from, to, err := filter.ParseDateRange(flagBetween)
		if err != nil {
			return nil, err
		}
		f.DateFrom, f.DateTo = from, to
	}
	f.DocumentsOnly = flagWithDocuments
	return f, nil
}

// loadPage returns the schedule page and the URL relative links resolve against
func loadPage(ctx context.Context) (*goquery.Document, *url.URL, error) {
	page, err := url.Parse(cfg.Scraper.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid page URL: %w", err)
	}

	if flagFile != "" {
		f, err := os.Open(flagFile)
		if err != nil {
			return nil, nil, fmt.Errorf("opening page file: %w", err)
		}
		defer f.Close()

		doc, err := goquery.NewDocumentFromReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing page file: %w", err)
		}
		logger.Debug("Loaded page from file", logger.Fields{"file": flagFile, "url": page.String()})
		return doc, page, nil
	}

	f := scraper.NewFetcher()
	f.UserAgent = cfg.Scraper.UserAgent
	f.Timeout = cfg.Scraper.Timeout
	f.MaxRetries = cfg.Scraper.MaxRetries
	f.RespectRobots = cfg.Scraper.RespectRobots

	doc, err := f.Fetch(ctx, page.String())
	if err != nil {
		return nil, nil, fmt.Errorf("fetching page: %w", err)
	}
	if doc.Url != nil {
		page = doc.Url
	}
	return doc, page, nil
}

// store upserts every event and returns the ones the sink had not seen
func store(ctx context.Context, events []*event.Event) (newEvents []*event.Event, err error) {
	sink, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing storage: %w", cerr)
		}
	}()

	newEvents = make([]*event.Event, 0)
	for _, evt := range events {
		created, err := sink.Upsert(ctx, evt)
		if err != nil {
			return nil, fmt.Errorf("storing event %s: %w", evt.ID, err)
		}
		if created {
			newEvents = append(newEvents, evt)
		}
	}

	logger.Info("Stored meetings", logger.Fields{
		"driver": cfg.Storage.Driver,
		"events": len(events),
		"new":    len(newEvents),
	})
	return newEvents, nil
}

func writeCalendar(path string, events []*event.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating calendar file: %w", err)
	}
	if err := calendar.Encode(f, events, time.Now()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func skipReasons(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	reasons := make([]string, len(errs))
	for i, err := range errs {
		reasons[i] = err.Error()
	}
	return reasons
}
