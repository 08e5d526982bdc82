package common

import (
	"fmt"

	"github.com/dtnitsch/discoverjesus-scraper/models"
	"github.com/urfave/cli/v2"
)

// LoadConfig reads --config and applies every flag the user set on top.
func LoadConfig(c *cli.Context) (*models.ScrapeConfig, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("base-url") {
		cfg.BaseURL = c.String("base-url")
	}
	if c.IsSet("tree-file") {
		cfg.TreeFile = c.String("tree-file")
	}
	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("data-module") {
		cfg.DataModule = c.String("data-module")
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("corrections") {
		cfg.CorrectionsFile = c.String("corrections")
	}
	if c.IsSet("check-delay") {
		cfg.CheckDelay = c.Duration("check-delay")
	}
	if c.IsSet("scrape-delay") {
		cfg.ScrapeDelay = c.Duration("scrape-delay")
	}
	if c.IsSet("max-attempts") {
		cfg.MaxAttempts = c.Int("max-attempts")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
	if c.IsSet("user-agent") {
		cfg.UserAgent = c.String("user-agent")
	}
	if c.IsSet("debug-max-age") {
		cfg.DebugMaxAge = c.Duration("debug-max-age")
	}
	if c.IsSet("respect-robots") {
		cfg.RespectRobots = c.Bool("respect-robots")
	}
	if c.IsSet("readability") {
		cfg.ReadabilityFallback = c.Bool("readability")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ConfigFlags are the global flags LoadConfig understands.
func ConfigFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML config file (missing file means defaults)",
			Value:   "scraper.yaml",
		},
		&cli.StringFlag{
			Name:  "base-url",
			Usage: "Site root that candidate URLs are built on",
		},
		&cli.StringFlag{
			Name:  "tree-file",
			Usage: "Directory tree listing of the audio files",
		},
		&cli.StringFlag{
			Name:  "output-dir",
			Usage: "Directory for progress, summaries, logs and debug HTML",
		},
		&cli.StringFlag{
			Name:  "data-module",
			Usage: "Path of the generated TypeScript data module",
		},
		&cli.StringFlag{
			Name:  "db",
			Usage: "Run history database (default: <output-dir>/scrape-history.db)",
		},
		&cli.StringFlag{
			Name:  "corrections",
			Usage: "YAML file of extra slug corrections",
		},
		&cli.DurationFlag{
			Name:  "check-delay",
			Usage: "Pause between URL checks",
		},
		&cli.DurationFlag{
			Name:  "scrape-delay",
			Usage: "Pause between page fetches",
		},
		&cli.IntFlag{
			Name:  "max-attempts",
			Usage: "Fetch attempts per page on network errors",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-request HTTP timeout",
		},
		&cli.StringFlag{
			Name:  "user-agent",
			Usage: "User-Agent header sent with every request",
		},
		&cli.DurationFlag{
			Name:  "debug-max-age",
			Usage: "Remove debug HTML older than this before scraping (0 keeps all)",
		},
		&cli.BoolFlag{
			Name:  "respect-robots",
			Usage: "Treat paths disallowed by robots.txt as errors",
		},
		&cli.BoolFlag{
			Name:  "readability",
			Usage: "Fall back to the readability excerpt for empty full summaries",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Debug logging",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Only log errors",
		},
	}
}
