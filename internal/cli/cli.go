package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/citybureau/zba-events/internal/config"
	"github.com/citybureau/zba-events/internal/logger"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess   = 0
	ExitError     = 1
	ExitNewEvents = 2
)

// ErrNewEvents is returned by the scrape command when meetings were found
// that the sink had not stored before. Execute turns it into ExitNewEvents.
var ErrNewEvents = errors.New("new events found")

var (
	flagConfig  string
	flagVerbose bool

	cfg *config.Config
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zba-events",
		Short: "Extract Chicago Zoning Board of Appeals meetings",
		Long: `A CLI tool to extract Chicago Zoning Board of Appeals meetings.
Tracks meetings across runs and reports only new meetings since the last check.
Also publishes scraper status badges from ECS task notifications.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadConfig,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newUpcomingCmd())
	cmd.AddCommand(newBadgeCmd())

	return cmd
}

// loadConfig reads configuration and sets up logging before any command runs
func loadConfig(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	cfg = loaded

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))
	return nil
}

// logMetrics dumps the run's counters, gauges and timings at debug level
func logMetrics() {
	logger.Debug("Run metrics", logger.Fields{"metrics": logger.GetMetricsSnapshot()})
}

// ExitCode maps the error returned by a command to a process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrNewEvents):
		return ExitNewEvents
	}
	return ExitError
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil && !errors.Is(err, ErrNewEvents) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	stop()
	os.Exit(ExitCode(err))
}
