package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Podcast configuration
	ConfigPath string `long:"config" env:"CONFIG_PATH" default:"./podcast.yml" description:"Path to the podcast configuration file"`

	// Application configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl      string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://pod.example.com)"`
	OutputDir    string `long:"output-dir" env:"OUTPUT_DIR" default:"./public" description:"Directory for the generated feed and health artifacts"`
	CachePath    string `long:"cache-path" env:"CACHE_PATH" default:"./relaycast.db" description:"SQLite database path for the feed cache"`
	CacheTTL     int    `long:"cache-ttl" env:"CACHE_TTL" default:"300" description:"Feed cache lifetime in seconds"`
	QueryLimit   int    `long:"query-limit" env:"QUERY_LIMIT" default:"500" description:"Maximum events requested per relay query"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	Build        bool   `long:"build" description:"Generate the feed once, write artifacts, and exit"`

	// Application metadata
	Environment string `long:"environment" env:"ENVIRONMENT" default:"production" description:"Deployment environment label reported in the health document"`
	Timezone    string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug       bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
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
		ConfigPath:   raw.ConfigPath,
		Port:         raw.Port,
		BaseUrl:      raw.BaseUrl,
		OutputDir:    raw.OutputDir,
		CachePath:    raw.CachePath,
		CacheTTL:     raw.CacheTTL,
		QueryLimit:   raw.QueryLimit,
		APIAccessKey: raw.APIAccessKey,
		Build:        raw.Build,
		Environment:  raw.Environment,
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		Version:      GetVersion(),
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
