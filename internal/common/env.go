package common

import (
	"errors"
	"log/slog"
	"time"

	"github.com/dtnitsch/discoverjesus-scraper/internal/pipeline"
	"github.com/dtnitsch/discoverjesus-scraper/models"
	"github.com/dtnitsch/discoverjesus-scraper/pkg/db"
	"github.com/dtnitsch/discoverjesus-scraper/pkg/storage"
	"github.com/urfave/cli/v2"
)

// Env is what a command needs for one run.
type Env struct {
	Config   *models.ScrapeConfig
	Logger   *slog.Logger
	Pipeline *pipeline.Pipeline
	History  *db.DB
	closers  []func() error
}

// Setup loads config, opens the run log and history database, and builds
// the pipeline. Callers must Close the Env.
func Setup(c *cli.Context, opts ...pipeline.Option) (*Env, error) {
	cfg, err := LoadConfig(c)
	if err != nil {
		return nil, err
	}

	store, err := storage.New(cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	ts := time.Now()
	logger, closeLog, err := RunLogger(c, store, ts)
	if err != nil {
		return nil, err
	}
	env := &Env{Config: cfg, Logger: logger, closers: []func() error{closeLog}}

	history, err := db.Open(cfg.HistoryDBPath())
	if err != nil {
		env.Close()
		return nil, err
	}
	env.History = history
	env.closers = append(env.closers, history.Close)

	base := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithHistory(history),
		pipeline.WithClock(func() time.Time { return ts }),
	}
	p, err := pipeline.New(cfg, append(base, opts...)...)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.Pipeline = p
	return env, nil
}

// Close releases resources in reverse order of acquisition.
func (e *Env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i]()
	}
}

// GateExit turns a gate error into an operator message and exit code 1.
// Other errors pass through.
func GateExit(logger *slog.Logger, err error) error {
	switch {
	case errors.Is(err, pipeline.ErrNoValidURLs):
		logger.Error("No valid URLs found. Please check the URL generation logic.")
		return cli.Exit(err.Error(), 1)
	case errors.Is(err, pipeline.ErrValidationBlocked):
		logger.Warn("Please fix invalid URLs before proceeding with scraping.")
		return cli.Exit(err.Error(), 1)
	default:
		return err
	}
}
