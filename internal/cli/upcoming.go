package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/citybureau/zba-events/internal/event"
	"github.com/citybureau/zba-events/internal/scraper"
	"github.com/citybureau/zba-events/internal/storage"
	"github.com/spf13/cobra"
)

var (
	flagFrom           string
	flagUpcomingFormat string
)

func newUpcomingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List stored meetings from a date onwards",
		Long: `List meetings already stored by earlier scrape runs, starting today
(Chicago time) or at --from. Nothing is fetched.`,
		RunE: runUpcoming,
	}

	cmd.Flags().StringVar(&flagFrom, "from", "", "First date to list (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&flagUpcomingFormat, "format", "text", "Output format: text or json")

	return cmd
}

func runUpcoming(cmd *cobra.Command, _ []string) (err error) {
	ctx := cmd.Context()

	format := OutputFormat(strings.ToLower(flagUpcomingFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagUpcomingFormat)
	}

	from, err := upcomingFrom(time.Now())
	if err != nil {
		return err
	}

	sink, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing storage: %w", cerr)
		}
	}()

	events, err := sink.Upcoming(ctx, from)
	if err != nil {
		return fmt.Errorf("listing meetings: %w", err)
	}

	result := &OutputResult{
		CheckedAt:  time.Now().UTC(),
		Source:     "storage:" + cfg.Storage.Driver,
		Events:     events,
		EventCount: len(events),
		NewEvents:  []*event.Event{},
		Filter:     "from " + from.String(),
	}
	if err := WriteOutput(cmd.OutOrStdout(), result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// upcomingFrom returns --from, or the current date in the meetings' timezone
func upcomingFrom(now time.Time) (event.Date, error) {
	if flagFrom != "" {
		return event.ParseDate(flagFrom)
	}
	loc, err := time.LoadLocation(scraper.ZoningBoard.Timezone)
	if err != nil {
		return event.Date{}, fmt.Errorf("loading timezone: %w", err)
	}
	return event.DateOf(now.In(loc)), nil
}
