package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// HTTP server
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Storage
	StorageBackend string `long:"storage" env:"STORAGE_BACKEND" default:"file" choice:"file" choice:"sqlite" description:"Storage backend for job tables"`
	DataDir        string `long:"data-dir" env:"DATA_DIR" default:"./data" description:"Directory for flat-file table storage"`
	SQLitePath     string `long:"sqlite-path" env:"SQLITE_PATH" default:"./data/jobfeed.db" description:"SQLite database path (sqlite backend)"`

	// Aggregation
	SourcesDir   string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing job source configuration files"`
	SyncInterval int    `long:"sync-interval" env:"SYNC_INTERVAL" default:"10" description:"Job sync interval in minutes"`
	MaxJobs      int    `long:"max-jobs" env:"MAX_JOBS" default:"2500" description:"Maximum number of jobs retained after a merge"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"JobFeed/1.0" description:"User agent string for upstream requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	// Optional .env file; environment variables win when both are set.
	_ = godotenv.Load()

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:           raw.Port,
		APIAccessKey:   raw.APIAccessKey,
		StorageBackend: raw.StorageBackend,
		DataDir:        raw.DataDir,
		SQLitePath:     raw.SQLitePath,
		SourcesDir:     raw.SourcesDir,
		SyncInterval:   raw.SyncInterval,
		MaxJobs:        raw.MaxJobs,
		UserAgent:      raw.UserAgent,
		Timezone:       raw.Timezone,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Intended for tests.
func Set(cfg *Cfg) {
	globalCfg = cfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
