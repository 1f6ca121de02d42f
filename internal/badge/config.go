package badge

import "time"

// Status is the health reported on a badge
type Status string

const (
	StatusRunning Status = "running"
	StatusFailing Status = "failing"
	StatusUnclear Status = "unclear"
)

const (
	DefaultTZOffset     = -6 * time.Hour
	DefaultCacheControl = "no-cache"
	ContentTypeSVG      = "image/svg+xml"
)

// Config is built once at startup and never modified afterwards.
type Config struct {
	Bucket       string
	Colors       map[Status]string
	TZOffset     time.Duration
	CacheControl string
	ContentType  string
}

// DefaultConfig returns the standard badge configuration for bucket.
func DefaultConfig(bucket string) Config {
	return Config{
		Bucket: bucket,
		Colors: map[Status]string{
			StatusRunning: "#44cc11",
			StatusFailing: "#cb2431",
			StatusUnclear: "#dfb317",
		},
		TZOffset:     DefaultTZOffset,
		CacheControl: DefaultCacheControl,
		ContentType:  ContentTypeSVG,
	}
}

// Color returns the badge color for s, falling back to the unclear color.
func (c Config) Color(s Status) string {
	if color, ok := c.Colors[s]; ok {
		return color
	}
	return c.Colors[StatusUnclear]
}

// Date formats now in the badge's timezone
func (c Config) Date(now time.Time) string {
	return now.UTC().Add(c.TZOffset).Format("2006-01-02")
}
