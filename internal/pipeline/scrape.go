package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dtnitsch/discoverjesus-scraper/models"
	"github.com/dtnitsch/discoverjesus-scraper/pkg/db"
	"golang.org/x/time/rate"
)

// ScrapeResult is what a scrape pass produced.
type ScrapeResult struct {
	// Summaries holds pages that had at least one summary field, in
	// fetch order.
	Summaries     []models.PageSummary
	Scraped       int
	Empty         int
	Failed        int
	ModuleEntries int
}

func newLimiter(d time.Duration) *rate.Limiter {
	if d <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d), 1)
}

// Scrape fetches and extracts every URL in order. The checkpoint is
// rewritten after each fetched page. A failing page is logged, appended to
// errors.log and skipped. The final summaries.json and data module are
// written once every URL has been tried.
func (p *Pipeline) Scrape(ctx context.Context, urls []string) (*ScrapeResult, error) {
	limiter := newLimiter(p.cfg.ScrapeDelay)
	res := &ScrapeResult{Summaries: []models.PageSummary{}}

	if removed, err := p.artifacts.Prune(); err != nil {
		p.logger.Warn("Failed to prune debug HTML", "error", err)
	} else if removed > 0 {
		p.logger.Info("Pruned stale debug HTML", "removed", removed, "max_age", p.artifacts.MaxAge())
	}

	p.logger.Info("Starting full scrape", "count", len(urls))
	for _, u := range urls {
		if err := limiter.Wait(ctx); err != nil {
			return res, err
		}

		p.logger.Info("Scraping page", "url", u)
		summary, err := p.scrapeOne(ctx, u)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.Failed++
			p.logger.Error("Error scraping page", "url", u, "error", err)
			if werr := p.store.AppendError(u, err); werr != nil {
				p.logger.Warn("Failed to append to error log", "error", werr)
			}
			p.recordFetch(u, false, err)
			continue
		}

		res.Scraped++
		p.recordFetch(u, summary.HasContent(), nil)
		if summary.HasContent() {
			res.Summaries = append(res.Summaries, *summary)
			p.logger.Info("Successfully scraped content", "url", u, "id", summary.ID)
		} else {
			res.Empty++
			p.logger.Warn("No content found", "url", u)
		}

		if err := p.store.SaveProgress(res.Summaries); err != nil {
			return res, fmt.Errorf("failed to save progress: %w", err)
		}
	}

	if err := p.store.SaveSummaries(res.Summaries); err != nil {
		return res, err
	}
	n, err := p.store.WriteDataModule(p.cfg.DataModule, res.Summaries)
	if err != nil {
		return res, err
	}
	res.ModuleEntries = n

	var size int64
	if stats, err := p.store.GetFileStats(p.cfg.DataModule); err == nil {
		size = stats.SizeBytes
	}
	p.logger.Info("Scrape complete",
		"scraped", res.Scraped,
		"empty", res.Empty,
		"failed", res.Failed,
		"data_module", p.cfg.DataModule,
		"entries", n,
		"bytes", size,
	)
	return res, nil
}

func (p *Pipeline) scrapeOne(ctx context.Context, u string) (*models.PageSummary, error) {
	body, err := p.fetcher.Fetch(ctx, u)
	if err != nil {
		return nil, err
	}
	return p.extractor.Extract(string(body), u)
}

func (p *Pipeline) recordFetch(u string, hasContent bool, fetchErr error) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.RecordFetch(u, hasContent, fetchErr); err != nil {
		p.logger.Warn("Failed to record fetch", "url", u, "error", err)
	}
}

// RunScrape runs the whole sequence: tree, validation, gate, operator
// confirmation and the scrape itself.
func (p *Pipeline) RunScrape(ctx context.Context) (*ScrapeResult, error) {
	if err := p.StartRun("scrape"); err != nil {
		return nil, err
	}

	var stats db.RunStats
	res, err := p.runScrape(ctx, &stats)
	p.FinishRun(Outcome(err), stats)
	return res, err
}

func (p *Pipeline) runScrape(ctx context.Context, stats *db.RunStats) (*ScrapeResult, error) {
	report, err := p.validateAndGate(ctx, stats)
	if err != nil {
		return nil, err
	}

	if !p.confirm(ConfirmPrompt) {
		p.logger.Info("Exiting before scraping")
		return nil, ErrDeclined
	}

	res, err := p.Scrape(ctx, report.ValidURLs())
	if res != nil {
		stats.Scraped = res.Scraped
		stats.Failed = res.Failed
	}
	return res, err
}
