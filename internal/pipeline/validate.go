package pipeline

import (
	"context"
	"fmt"

	"github.com/dtnitsch/discoverjesus-scraper/models"
	"github.com/dtnitsch/discoverjesus-scraper/pkg/db"
	"github.com/dtnitsch/discoverjesus-scraper/pkg/storage"
	"github.com/dtnitsch/discoverjesus-scraper/pkg/validator"
)

// Validate checks every candidate and writes valid_urls.json,
// invalid_urls.json and the plain-text summary log.
func (p *Pipeline) Validate(ctx context.Context, candidates []models.CandidateURL) (*validator.Report, error) {
	opts := []validator.Option{
		validator.WithDelay(p.cfg.CheckDelay),
		validator.WithRobots(p.cfg.RespectRobots),
		validator.WithLogger(p.logger),
	}
	if p.recorder != nil {
		opts = append(opts, validator.WithRecorder(p.recorder))
	}

	p.logger.Info("Validating URLs", "count", len(candidates))
	report, err := validator.New(p.fetcher, opts...).ValidateAll(ctx, candidates)
	if err != nil {
		return report, fmt.Errorf("validation interrupted: %w", err)
	}

	summaryLog, err := p.store.WriteSummaryLog(report, p.now())
	if err != nil {
		return report, err
	}
	if err := p.store.SaveValidURLs(report.ValidURLs()); err != nil {
		return report, err
	}
	if err := p.store.SaveInvalidURLs(report.InvalidURLs()); err != nil {
		return report, err
	}

	p.logger.Info("URL validation summary",
		"total", len(report.Results),
		"valid", len(report.Valid),
		"redirected", len(report.Redirected),
		"not_found", len(report.NotFound),
		"errored", len(report.Errored),
	)
	p.logger.Info("Validation artifacts saved",
		"summary_log", summaryLog,
		"invalid_urls", p.store.Path(storage.InvalidURLsFile),
	)
	return report, nil
}

// Gate decides whether a report may proceed to scraping. A report with no
// valid URLs, or with any not_found or errored URL, may not.
func Gate(report *validator.Report) error {
	if len(report.Valid) == 0 {
		return ErrNoValidURLs
	}
	if report.Blocked() {
		return fmt.Errorf("%w: %d not found, %d errored", ErrValidationBlocked, len(report.NotFound), len(report.Errored))
	}
	return nil
}

// RunValidate parses the tree, validates it and applies the gate.
func (p *Pipeline) RunValidate(ctx context.Context) (*validator.Report, error) {
	if err := p.StartRun("validate"); err != nil {
		return nil, err
	}

	var stats db.RunStats
	report, err := p.validateAndGate(ctx, &stats)
	p.FinishRun(Outcome(err), stats)
	return report, err
}

func (p *Pipeline) validateAndGate(ctx context.Context, stats *db.RunStats) (*validator.Report, error) {
	result, err := p.Candidates()
	if err != nil {
		return nil, err
	}
	stats.Candidates = len(result.Candidates)

	report, err := p.Validate(ctx, result.Candidates)
	if report != nil {
		stats.Valid = len(report.Valid)
		stats.Redirected = len(report.Redirected)
		stats.NotFound = len(report.NotFound)
		stats.Errored = len(report.Errored)
	}
	if err != nil {
		return report, err
	}

	if err := Gate(report); err != nil {
		return report, err
	}
	return report, nil
}
