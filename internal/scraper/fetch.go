package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/citybureau/zba-events/internal/logger"
	"github.com/gocolly/colly"
)

const (
	UserAgent  = "zba-events/1.0 (github.com/citybureau/zba-events)"
	Timeout    = 30 * time.Second
	MaxRetries = 3
)

// Fetcher downloads a single page, honoring robots.txt and retrying
// transient failures with exponential backoff.
type Fetcher struct {
	UserAgent       string
	Timeout         time.Duration
	MaxRetries      uint64
	InitialInterval time.Duration
	RespectRobots   bool
}

// NewFetcher creates a Fetcher with the default politeness settings
func NewFetcher() *Fetcher {
	return &Fetcher{
		UserAgent:       UserAgent,
		Timeout:         Timeout,
		MaxRetries:      MaxRetries,
		InitialInterval: 2 * time.Second,
		RespectRobots:   true,
	}
}

// Fetch downloads and parses pageURL. The returned document's Url is the
// address the page was served from and is the base for relative links.
// 4xx responses and robots.txt refusals are not retried.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if _, err := url.ParseRequestURI(pageURL); err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}

	c := colly.NewCollector(
		colly.UserAgent(f.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.IgnoreRobotsTxt = !f.RespectRobots
	c.SetRequestTimeout(f.Timeout)

	var (
		doc      *goquery.Document
		status   int
		parseErr error
	)
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		d, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			parseErr = fmt.Errorf("parsing HTML: %w", err)
			return
		}
		d.Url = r.Request.URL
		doc = d
	})
	c.OnError(func(r *colly.Response, err error) {
		status = r.StatusCode
	})

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.InitialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, f.MaxRetries), ctx)

	attempt := func() error {
		status = 0
		err := c.Visit(pageURL)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, colly.ErrRobotsTxtBlocked):
			return backoff.Permanent(fmt.Errorf("fetching page: %w", err))
		case status >= 400 && status < 500:
			return backoff.Permanent(fmt.Errorf("unexpected status code: %d", status))
		case status != 0:
			return fmt.Errorf("unexpected status code: %d", status)
		}
		return fmt.Errorf("fetching page: %w", err)
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("Retrying page fetch", logger.Fields{
			"url":   pageURL,
			"wait":  wait.String(),
			"cause": err.Error(),
		})
	}

	started := time.Now()
	err := backoff.RetryNotify(attempt, policy, notify)
	logger.RecordTiming("scraper.fetch", time.Since(started))
	if err != nil {
		return nil, err
	}
	if parseErr != nil {
		return nil, parseErr
	}
	if doc == nil {
		return nil, fmt.Errorf("fetching page: no response from %s", pageURL)
	}
	return doc, nil
}
