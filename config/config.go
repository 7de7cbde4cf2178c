// Package config loads and validates crawler configuration from YAML
// files on top of defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// AppName names the config and data directories under the XDG base
// directories.
const AppName = "wordhound"

// ConfigFileName is looked for in the working directory and the XDG
// config directory when no --config flag is given.
const ConfigFileName = "wordhound.yml"

// Fetch engines accepted by Config.Fetcher.
const (
	FetcherChrome = "chrome"
	FetcherHTTP   = "http"
)

// Store backends accepted by Config.Store.
const (
	StoreNone   = "none"
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreLibSQL = "libsql"
)

const (
	DefaultConcurrency      = 20
	DefaultRequestTimeoutMS = 10000
	DefaultMinWordLength    = 3
	DefaultLogEvery         = 100
	DefaultScreenshotDir    = "screenshots"
)

// Validation errors, checkable with errors.Is.
var (
	ErrNoSeeds           = errors.New("config: at least one seed url is required")
	ErrNoDictionary      = errors.New("config: dictionary is empty")
	ErrBadConcurrency    = errors.New("config: simultaneous_requests must be positive")
	ErrBadTimeout        = errors.New("config: request_timeout_ms must be positive")
	ErrBadMinWordLength  = errors.New("config: min_word_length must be positive")
	ErrUnknownFetcher    = errors.New("config: fetcher must be chrome or http")
	ErrUnknownStore      = errors.New("config: unknown store backend")
	ErrLibSQLURLRequired = errors.New("config: libsql store needs libsql_url")
)

// Config is the full crawler configuration. Load applies it on top of
// Default, so absent keys keep their defaults.
type Config struct {
	Seeds              []string `yaml:"seeds"`
	Dictionary         []string `yaml:"dictionary"`
	DictionaryFile     string   `yaml:"dictionary_file"`
	InterestingDomains []string `yaml:"interesting_domains"`
	SeedCrawled        []string `yaml:"seed_crawled"`

	SimultaneousRequests int  `yaml:"simultaneous_requests"`
	RequestTimeoutMS     int  `yaml:"request_timeout_ms"`
	MinWordLength        int  `yaml:"min_word_length"`
	LogEvery             int  `yaml:"log_every"`
	RateLimit            int  `yaml:"rate_limit"`
	Debug                bool `yaml:"debug"`

	Fetcher   string `yaml:"fetcher"`
	UserAgent string `yaml:"user_agent"`
	Headful   bool   `yaml:"headful"`

	Screenshots   bool   `yaml:"screenshots"`
	ScreenshotDir string `yaml:"screenshot_dir"`

	Store     string `yaml:"store"`
	DBPath    string `yaml:"db_path"`
	StoreDir  string `yaml:"store_dir"`
	LibSQLURL string `yaml:"libsql_url"`

	ReportPath string `yaml:"report"`
	ExcelPath  string `yaml:"excel"`
}

// Default returns a Config with every optional field set to its default.
func Default() *Config {
	return &Config{
		SimultaneousRequests: DefaultConcurrency,
		RequestTimeoutMS:     DefaultRequestTimeoutMS,
		MinWordLength:        DefaultMinWordLength,
		LogEvery:             DefaultLogEvery,
		Fetcher:              FetcherChrome,
		ScreenshotDir:        DefaultScreenshotDir,
		Store:                StoreNone,
	}
}

// Load reads a YAML config from path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Find returns the first config file present in the search path, or ""
// when there is none.
func Find() string {
	candidates := []string{
		ConfigFileName,
		filepath.Join(xdg.ConfigHome, AppName, ConfigFileName),
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// Validate checks field consistency. Flag handling and file existence are
// the caller's job.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}
	if len(c.Dictionary) == 0 && c.DictionaryFile == "" {
		return ErrNoDictionary
	}
	if c.SimultaneousRequests <= 0 {
		return ErrBadConcurrency
	}
	if c.RequestTimeoutMS <= 0 {
		return ErrBadTimeout
	}
	if c.MinWordLength <= 0 {
		return ErrBadMinWordLength
	}
	switch c.Fetcher {
	case FetcherChrome, FetcherHTTP:
	default:
		return ErrUnknownFetcher
	}
	switch c.Store {
	case "", StoreNone, StoreMemory, StoreFile, StoreSQLite, StoreLibSQL:
	default:
		return ErrUnknownStore
	}
	if c.Store == StoreLibSQL && c.LibSQLURL == "" {
		return ErrLibSQLURLRequired
	}
	return nil
}

// RequestTimeout converts the configured timeout to a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// DataDir is the XDG data directory for crawl artifacts.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// DefaultDBPath is where the sqlite store lands unless db_path overrides
// it.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "results.db")
}

// DefaultStoreDir is where the file store lands unless store_dir
// overrides it.
func DefaultStoreDir() string {
	return filepath.Join(DataDir(), "results")
}
