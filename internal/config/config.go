// Package config loads zba-events settings from an optional YAML file and
// the environment. Environment variables win over the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// Storage drivers
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Empty-document policies, mirrored by scraper.DocumentPolicy
const (
	DocumentsPlaceholder = "placeholder"
	DocumentsEmpty       = "empty"
)

type Scraper struct {
	URL            string        `yaml:"url"`
	UserAgent      string        `yaml:"user_agent"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     uint64        `yaml:"max_retries"`
	RespectRobots  bool          `yaml:"respect_robots"`
	EmptyDocuments string        `yaml:"empty_documents"`
}

type Storage struct {
	Driver          string `yaml:"driver"`
	DataDir         string `yaml:"data_dir"`
	SQLiteFile      string `yaml:"sqlite_file"`
	MongoURI        string `yaml:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection"`
}

// SQLitePath returns the database file location inside DataDir unless SQLiteFile is absolute
func (s Storage) SQLitePath() string {
	if filepath.IsAbs(s.SQLiteFile) {
		return s.SQLiteFile
	}
	return filepath.Join(expandHome(s.DataDir), s.SQLiteFile)
}

type Badge struct {
	Bucket        string `yaml:"bucket"`
	QueueURL      string `yaml:"queue_url"`
	Region        string `yaml:"region"`
	EndpointURL   string `yaml:"endpoint_url"`
	TZOffsetHours int    `yaml:"tz_offset_hours"`
}

type Log struct {
	Level string `yaml:"level"`
}

type Config struct {
	Scraper Scraper `yaml:"scraper"`
	Storage Storage `yaml:"storage"`
	Badge   Badge   `yaml:"badge"`
	Log     Log     `yaml:"log"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Scraper: Scraper{
			URL:            "https://www.cityofchicago.org/city/en/depts/dcd/supp_info/zoning_board_of_appeals.html",
			UserAgent:      "zba-events/1.0 (github.com/citybureau/zba-events)",
			Timeout:        30 * time.Second,
			MaxRetries:     3,
			RespectRobots:  true,
			EmptyDocuments: DocumentsPlaceholder,
		},
		Storage: Storage{
			Driver:          DriverJSON,
			DataDir:         "~/.local/share/zba-events",
			SQLiteFile:      "events.db",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   "city_scrapers",
			MongoCollection: "events",
		},
		Badge: Badge{
			Region:        "us-east-1",
			TZOffsetHours: -6,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path (if non-empty) over the defaults, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	c.Scraper.URL = getEnv("ZBA_URL", c.Scraper.URL)
	c.Scraper.EmptyDocuments = getEnv("ZBA_EMPTY_DOCUMENTS", c.Scraper.EmptyDocuments)
	c.Storage.Driver = getEnv("ZBA_STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.DataDir = getEnv("ZBA_DATA_DIR", c.Storage.DataDir)
	c.Storage.MongoURI = getEnv("ZBA_MONGO_URI", c.Storage.MongoURI)
	c.Badge.Bucket = getEnv("STATUS_BUCKET", c.Badge.Bucket)
	c.Badge.QueueURL = getEnv("STATUS_QUEUE_URL", c.Badge.QueueURL)
	c.Badge.Region = getEnv("AWS_REGION", c.Badge.Region)
	c.Badge.EndpointURL = getEnv("AWS_ENDPOINT_URL", c.Badge.EndpointURL)
	c.Log.Level = getEnv("ZBA_LOG_LEVEL", c.Log.Level)

	if v, ok := os.LookupEnv("STATUS_TZ_OFFSET_HOURS"); ok {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid STATUS_TZ_OFFSET_HOURS %q: %w", v, err)
		}
		c.Badge.TZOffsetHours = hours
	}
	return nil
}

// Validate rejects settings no component can act on
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverJSON, DriverSQLite, DriverMongo:
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}
	switch c.Scraper.EmptyDocuments {
	case DocumentsPlaceholder, DocumentsEmpty:
	default:
		return fmt.Errorf("unknown empty_documents policy: %s", c.Scraper.EmptyDocuments)
	}
	if c.Scraper.URL == "" {
		return fmt.Errorf("scraper url is required")
	}
	if c.Badge.TZOffsetHours < -14 || c.Badge.TZOffsetHours > 14 {
		return fmt.Errorf("badge tz_offset_hours out of range: %d", c.Badge.TZOffsetHours)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func expandHome(dir string) string {
	if len(dir) > 1 && dir[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, dir[2:])
		}
	}
	return dir
}
