// Package pipeline runs the tree -> validate -> scrape -> persist sequence
// shared by the CLI commands.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dtnitsch/discoverjesus-scraper/models"
	"github.com/dtnitsch/discoverjesus-scraper/pkg/artifact_manager"
	"github.com/dtnitsch/discoverjesus-scraper/pkg/db"
	"github.com/dtnitsch/discoverjesus-scraper/pkg/extractor"
	"github.com/dtnitsch/discoverjesus-scraper/pkg/fetcher"
	"github.com/dtnitsch/discoverjesus-scraper/pkg/slug"
	"github.com/dtnitsch/discoverjesus-scraper/pkg/storage"
	"github.com/dtnitsch/discoverjesus-scraper/pkg/tree"
)

var (
	// ErrValidationBlocked means at least one candidate is not_found or
	// errored and must be corrected before scraping.
	ErrValidationBlocked = errors.New("invalid URLs must be fixed before scraping")
	// ErrNoValidURLs means validation produced nothing to scrape.
	ErrNoValidURLs = errors.New("no valid URLs found")
	// ErrDeclined means the operator did not answer y at the prompt.
	ErrDeclined = errors.New("scrape declined")
)

// ConfirmPrompt is asked once before the bulk fetch.
const ConfirmPrompt = "Do you want to proceed with scraping the valid URLs? (y/n): "

// ConfirmFunc asks the operator a yes/no question.
type ConfirmFunc func(question string) bool

// Pipeline wires the stages together for one run.
type Pipeline struct {
	cfg         *models.ScrapeConfig
	logger      *slog.Logger
	store       *storage.Storage
	artifacts   *artifact_manager.Manager
	fetcher     *fetcher.Fetcher
	fetcherOpts []fetcher.Option
	extractor   *extractor.Extractor
	history     *db.DB
	recorder    *db.RunRecorder
	confirm     ConfirmFunc
	now         func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithHistory records checks and fetches in the run history database.
func WithHistory(h *db.DB) Option { return func(p *Pipeline) { p.history = h } }

func WithConfirm(fn ConfirmFunc) Option { return func(p *Pipeline) { p.confirm = fn } }

func WithLogger(l *slog.Logger) Option { return func(p *Pipeline) { p.logger = l } }

// WithFetcherOptions adds options to the fetcher built by New.
func WithFetcherOptions(opts ...fetcher.Option) Option {
	return func(p *Pipeline) { p.fetcherOpts = append(p.fetcherOpts, opts...) }
}

// WithClock replaces time.Now for log file timestamps.
func WithClock(now func() time.Time) Option { return func(p *Pipeline) { p.now = now } }

// New validates cfg and builds the stages it describes.
func New(cfg *models.ScrapeConfig, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	p := &Pipeline{
		cfg:     cfg,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		confirm: func(string) bool { return false },
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	store, err := storage.New(cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	p.store = store

	artifacts, err := artifact_manager.NewManager(cfg.OutputDir, cfg.DebugMaxAge)
	if err != nil {
		return nil, err
	}
	p.artifacts = artifacts

	fetcherOpts := []fetcher.Option{
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithMaxAttempts(cfg.MaxAttempts),
		fetcher.WithDebugSink(artifacts),
		fetcher.WithLogger(p.logger),
	}
	p.fetcher = fetcher.NewFetcher(append(fetcherOpts, p.fetcherOpts...)...)
	p.extractor = extractor.New(cfg.ReadabilityFallback)

	return p, nil
}

// Storage exposes the output directory writer.
func (p *Pipeline) Storage() *storage.Storage { return p.store }

// Candidates parses the tree file into candidate URLs.
func (p *Pipeline) Candidates() (*tree.Result, error) {
	corrections, err := slug.LoadCorrections(p.cfg.CorrectionsFile)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Extracting URLs from tree file", "tree_file", p.cfg.TreeFile, "corrections", corrections.Len())
	result, err := tree.New(p.cfg.BaseURL, corrections, p.logger).ParseFile(p.cfg.TreeFile)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Found URLs to validate", "count", len(result.Candidates))
	return result, nil
}

// StartRun opens a history row for command. Without a history database
// it does nothing.
func (p *Pipeline) StartRun(command string) error {
	if p.history == nil {
		return nil
	}
	runID, err := p.history.StartRun(command, p.cfg.BaseURL)
	if err != nil {
		return err
	}
	p.recorder = p.history.Recorder(runID)
	p.logger.Debug("Run started", "run_id", runID, "command", command)
	return nil
}

// FinishRun closes the history row opened by StartRun.
func (p *Pipeline) FinishRun(outcome string, stats db.RunStats) {
	if p.recorder == nil {
		return
	}
	if err := p.history.FinishRun(p.recorder.RunID(), outcome, stats); err != nil {
		p.logger.Warn("Failed to finish run", "run_id", p.recorder.RunID(), "error", err)
	}
}

// Outcome maps a pipeline error onto a run outcome.
func Outcome(err error) string {
	switch {
	case err == nil:
		return db.OutcomeCompleted
	case errors.Is(err, ErrValidationBlocked):
		return db.OutcomeBlocked
	case errors.Is(err, ErrNoValidURLs):
		return db.OutcomeNoValidURLs
	case errors.Is(err, ErrDeclined):
		return db.OutcomeDeclined
	case errors.Is(err, context.Canceled):
		return db.OutcomeCancelled
	default:
		return db.OutcomeFailed
	}
}
