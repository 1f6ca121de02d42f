package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/citybureau/zba-events/internal/badge"
	"github.com/spf13/cobra"
)

var (
	flagEvent       string
	flagBadgeDryRun bool
	flagQueueURL    string
)

func newBadgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "badge",
		Short: "Publish scraper status badges",
	}

	publish := &cobra.Command{
		Use:   "publish",
		Short: "Publish a badge for one ECS task state change event",
		Long: `Read one ECS task state change event (from --event or stdin) and write
the scraper's status badge to the configured bucket. Events for tasks that
have not stopped are ignored.`,
		RunE: runBadgePublish,
	}
	publish.Flags().StringVar(&flagEvent, "event", "", "Path to the event JSON file (or read from stdin)")
	publish.Flags().BoolVar(&flagBadgeDryRun, "dry-run", false, "Print the badge without uploading it")

	listen := &cobra.Command{
		Use:   "listen",
		Short: "Publish badges for events received on an SQS queue",
		RunE:  runBadgeListen,
	}
	listen.Flags().StringVar(&flagQueueURL, "queue-url", "", "SQS queue URL (defaults to badge.queue_url)")

	cmd.AddCommand(publish, listen)
	return cmd
}

// badgeConfig builds the immutable publisher configuration
func badgeConfig() badge.Config {
	bc := badge.DefaultConfig(cfg.Badge.Bucket)
	bc.TZOffset = time.Duration(cfg.Badge.TZOffsetHours) * time.Hour
	return bc
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Badge.Region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}
	if cfg.Badge.EndpointURL != "" {
		awsCfg.BaseEndpoint = aws.String(cfg.Badge.EndpointURL)
	}
	return awsCfg, nil
}

func newWriter(ctx context.Context, bc badge.Config, out io.Writer, dryRun bool) (badge.Writer, error) {
	if dryRun {
		return badge.NewDryRunWriter(out), nil
	}
	if bc.Bucket == "" {
		return nil, fmt.Errorf("no status bucket configured (set STATUS_BUCKET or badge.bucket)")
	}
	awsCfg, err := loadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	return badge.NewS3Writer(badge.NewS3Client(awsCfg), bc), nil
}

func runBadgePublish(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	var reader io.Reader = cmd.InOrStdin()
	if flagEvent != "" {
		f, err := os.Open(flagEvent)
		if err != nil {
			return fmt.Errorf("opening event file: %w", err)
		}
		defer f.Close()
		reader = f
	}

	raw, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("reading event: %w", err)
	}

	bc := badgeConfig()
	w, err := newWriter(ctx, bc, cmd.OutOrStdout(), flagBadgeDryRun)
	if err != nil {
		return err
	}

	b, err := badge.NewPublisher(bc, w).Handle(ctx, raw)
	if err != nil {
		return err
	}
	if b == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Task has not stopped, no badge written.")
		return nil
	}
	if !flagBadgeDryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "Published %s badge to s3://%s/%s\n", b.Status, bc.Bucket, b.Key)
	}
	return nil
}

func runBadgeListen(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	queueURL := flagQueueURL
	if queueURL == "" {
		queueURL = cfg.Badge.QueueURL
	}
	if queueURL == "" {
		return fmt.Errorf("no queue URL configured (use --queue-url or STATUS_QUEUE_URL)")
	}

	bc := badgeConfig()
	w, err := newWriter(ctx, bc, cmd.OutOrStdout(), false)
	if err != nil {
		return err
	}
	awsCfg, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	queue := badge.NewSQSQueue(sqs.NewFromConfig(awsCfg), queueURL)
	err = badge.NewListener(queue, badge.NewPublisher(bc, w)).Run(ctx)
	logMetrics()
	return err
}
