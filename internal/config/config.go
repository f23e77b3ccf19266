package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"KabuArchive/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Store struct {
		Dir string `yaml:"dir"`
	} `yaml:"store"`
	Universe struct {
		RosterFile string `yaml:"roster_file"`
		ListingURL string `yaml:"listing_url"`
		ProbeFrom  int    `yaml:"probe_from"`
		ProbeTo    int    `yaml:"probe_to"`
	} `yaml:"universe"`
	Fetch struct {
		StartDate    string  `yaml:"start_date"`
		DelaySeconds float64 `yaml:"delay_seconds"`
	} `yaml:"fetch"`
	Schedule struct {
		UpdateCron string `yaml:"update_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is fine; defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("STORE_DIR"); v != "" {
		cfg.Store.Dir = v
	}
	if v := os.Getenv("ROSTER_FILE"); v != "" {
		cfg.Universe.RosterFile = v
	}
	if v := os.Getenv("LISTING_URL"); v != "" {
		cfg.Universe.ListingURL = v
	}
	if v := os.Getenv("FETCH_DELAY_SECONDS"); v != "" {
		if d, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Fetch.DelaySeconds = d
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Store.Dir == "" {
		cfg.Store.Dir = "data"
	}
	if cfg.Universe.RosterFile == "" {
		cfg.Universe.RosterFile = "tickers.csv"
	}
	if cfg.Universe.ProbeFrom == 0 {
		cfg.Universe.ProbeFrom = 1000
	}
	if cfg.Universe.ProbeTo == 0 {
		cfg.Universe.ProbeTo = 9999
	}
	if cfg.Fetch.StartDate == "" {
		cfg.Fetch.StartDate = "2016-01-01"
	}
	if cfg.Fetch.DelaySeconds == 0 {
		cfg.Fetch.DelaySeconds = 1.0
	}
	if cfg.Schedule.UpdateCron == "" {
		// weekday evenings after the TSE close
		cfg.Schedule.UpdateCron = "0 0 19 * * 1-5"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.File == "" {
		cfg.Log.File = "download.log"
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 20
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = 3
	}

	return cfg, nil
}

// Validate checks field consistency.
func (c *Config) Validate() error {
	if _, err := model.ParseDay(c.Fetch.StartDate); err != nil {
		return fmt.Errorf("fetch.start_date: %w", err)
	}
	if c.Fetch.DelaySeconds < 0 {
		return fmt.Errorf("fetch.delay_seconds must not be negative")
	}
	if c.Universe.ProbeFrom <= 0 || c.Universe.ProbeTo < c.Universe.ProbeFrom {
		return fmt.Errorf("universe probe range [%d, %d] is invalid", c.Universe.ProbeFrom, c.Universe.ProbeTo)
	}
	return nil
}

// StartDay returns the configured backfill start date. Call Validate first.
func (c *Config) StartDay() model.Day {
	d, _ := model.ParseDay(c.Fetch.StartDate)
	return d
}

// Delay returns the configured inter-request delay as a duration.
func (c *Config) Delay() time.Duration {
	return time.Duration(c.Fetch.DelaySeconds * float64(time.Second))
}
