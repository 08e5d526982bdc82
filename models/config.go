// Package models defines data structures for configuration, tree entries,
// validation results and scraped summaries.
package models

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL    = "https://discoverjesus.com"
	DefaultTreeFile   = "docs/New Series/tree-level6.txt"
	DefaultOutputDir  = "scraper"
	DefaultDataModule = "src/data/discoverJesusSummaries.ts"
	DefaultUserAgent  = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36"
)

// ScrapeConfig holds runtime configuration for a scrape run.
// Values come from an optional YAML file; CLI flags override them.
type ScrapeConfig struct {
	BaseURL         string        `yaml:"base_url"`
	TreeFile        string        `yaml:"tree_file"`
	OutputDir       string        `yaml:"output_dir"`
	DataModule      string        `yaml:"data_module"`
	DBPath          string        `yaml:"db_path"`
	CorrectionsFile string        `yaml:"corrections_file"`
	CheckDelay      time.Duration `yaml:"check_delay"`
	ScrapeDelay     time.Duration `yaml:"scrape_delay"`
	MaxAttempts     int           `yaml:"max_attempts"`
	Timeout         time.Duration `yaml:"timeout"`
	UserAgent       string        `yaml:"user_agent"`
	// DebugMaxAge prunes debug HTML copies older than this when a scrape
	// starts. Zero keeps them all.
	DebugMaxAge time.Duration `yaml:"debug_max_age"`

	RespectRobots       bool `yaml:"respect_robots"`
	ReadabilityFallback bool `yaml:"readability_fallback"`
}

// DefaultConfig returns the settings the scraper was originally run with.
func DefaultConfig() *ScrapeConfig {
	return &ScrapeConfig{
		BaseURL:     DefaultBaseURL,
		TreeFile:    DefaultTreeFile,
		OutputDir:   DefaultOutputDir,
		DataModule:  DefaultDataModule,
		CheckDelay:  500 * time.Millisecond,
		ScrapeDelay: 2 * time.Second,
		MaxAttempts: 3,
		Timeout:     30 * time.Second,
		UserAgent:   DefaultUserAgent,
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
// A missing file is not an error; defaults are returned.
func LoadConfig(path string) (*ScrapeConfig, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail deep inside a run.
func (c *ScrapeConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url %q is not an absolute URL", c.BaseURL)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max_attempts must be positive, got %d", c.MaxAttempts)
	}
	if c.CheckDelay < 0 || c.ScrapeDelay < 0 || c.DebugMaxAge < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must be set")
	}
	return nil
}

// HistoryDBPath returns the run-history database path, defaulting to
// scrape-history.db inside the output directory.
func (c *ScrapeConfig) HistoryDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(c.OutputDir, "scrape-history.db")
}
