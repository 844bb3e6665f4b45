package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// KstLoc is the fallback session timezone (UTC+9) used when the configured
// timezone cannot be loaded from the system zone database.
var KstLoc = time.FixedZone("KST", 9*3600)

// Config combines secrets (environment / .env) with tunables (yaml file).
// Secrets never go in the yaml file; tunables have working defaults so the
// service runs with just the two required environment variables.
type Config struct {
	// From environment.
	CredsPath     string `yaml:"-"` // GS_CREDS_JSON: service account key file
	SpreadsheetID string `yaml:"-"` // GS_SHEET_ID

	ListenAddr         string `yaml:"listen_addr"`
	RefreshIntervalSec int    `yaml:"refresh_interval_sec"`
	Timezone           string `yaml:"timezone"`

	Sheets struct {
		Portfolio     string `yaml:"portfolio"`
		History       string `yaml:"history"`
		OrderPrefix   string `yaml:"order_prefix"`
		SignalPrefix  string `yaml:"signal_prefix"`
		SummaryRange  string `yaml:"summary_range"`
		PositionRange string `yaml:"position_range"`
	} `yaml:"sheets"`

	Risk struct {
		MaxPositionWeight        float64 `yaml:"max_position_weight"`
		MaxAllocationUtilization float64 `yaml:"max_allocation_utilization"`
	} `yaml:"risk"`

	SnapshotFile  string `yaml:"snapshot_file"`
	MaxLogSizeMB  int64  `yaml:"max_log_size_mb"`
	MaxLogBackups int    `yaml:"max_log_backups"`
}

// Load reads .env into the process environment, applies the yaml config file
// when present, then fills defaults and validates. path may be "" to run on
// environment and defaults alone.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, using system environment variables")
	}

	cfg := &Config{}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.CredsPath = os.Getenv("GS_CREDS_JSON")
	cfg.SpreadsheetID = os.Getenv("GS_SHEET_ID")

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.RefreshIntervalSec == 0 {
		c.RefreshIntervalSec = 60
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Seoul"
	}
	if c.Sheets.Portfolio == "" {
		c.Sheets.Portfolio = "portfolio"
	}
	if c.Sheets.History == "" {
		c.Sheets.History = "history"
	}
	if c.Sheets.OrderPrefix == "" {
		c.Sheets.OrderPrefix = "Order_"
	}
	if c.Sheets.SignalPrefix == "" {
		c.Sheets.SignalPrefix = "Signal_"
	}
	if c.Sheets.SummaryRange == "" {
		c.Sheets.SummaryRange = "A1:B8"
	}
	if c.Sheets.PositionRange == "" {
		c.Sheets.PositionRange = "A10:E100"
	}
	if c.Risk.MaxPositionWeight == 0 {
		c.Risk.MaxPositionWeight = envFloat("RISK_MAX_POSITION_WEIGHT", 0.15)
	}
	if c.Risk.MaxAllocationUtilization == 0 {
		c.Risk.MaxAllocationUtilization = envFloat("RISK_MAX_ALLOCATION", 0.75)
	}
	if c.SnapshotFile == "" {
		c.SnapshotFile = "dashboard_snapshot.json"
	}
	if c.MaxLogSizeMB == 0 {
		c.MaxLogSizeMB = 10
	}
	if c.MaxLogBackups == 0 {
		c.MaxLogBackups = 3
	}
}

// envFloat reads a float environment variable, keeping the fallback when the
// variable is unset or not a number.
func envFloat(key string, fallback float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("Warning: %s=%q is not a number, using %g", key, raw, fallback)
		return fallback
	}
	return f
}

// Validate checks the invariants the pipeline relies on.
func (c *Config) Validate() error {
	if c.CredsPath == "" {
		return fmt.Errorf("GS_CREDS_JSON is required")
	}
	if c.SpreadsheetID == "" {
		return fmt.Errorf("GS_SHEET_ID is required")
	}
	if c.RefreshIntervalSec < 5 {
		return fmt.Errorf("refresh_interval_sec must be >= 5, got %d", c.RefreshIntervalSec)
	}
	if c.Risk.MaxPositionWeight <= 0 || c.Risk.MaxPositionWeight > 1 {
		return fmt.Errorf("risk.max_position_weight must be in (0,1], got %f", c.Risk.MaxPositionWeight)
	}
	if c.Risk.MaxAllocationUtilization <= 0 || c.Risk.MaxAllocationUtilization > 1 {
		return fmt.Errorf("risk.max_allocation_utilization must be in (0,1], got %f", c.Risk.MaxAllocationUtilization)
	}
	return nil
}

// Location resolves the configured session timezone, falling back to fixed
// UTC+9 when the zone database is unavailable (e.g. minimal containers).
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Warning: cannot load timezone %q, falling back to KST: %v", c.Timezone, err)
		return KstLoc
	}
	return loc
}
