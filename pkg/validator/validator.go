// Package validator confirms that candidate URLs resolve on the target site
// before anything is scraped.
package validator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dtnitsch/discoverjesus-scraper/models"
	"github.com/dtnitsch/discoverjesus-scraper/pkg/fetcher"
	"golang.org/x/time/rate"
)

// ErrDisallowed is recorded when robots.txt forbids a candidate path.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Header is the part of the fetcher the validator needs.
type Header interface {
	Head(ctx context.Context, rawURL string) (*fetcher.HeadResult, error)
	Allowed(ctx context.Context, rawURL string) bool
}

// Recorder is notified of every result, e.g. to keep a run history.
type Recorder interface {
	RecordCheck(result models.ValidationResult) error
}

type Validator struct {
	client        Header
	limiter       *rate.Limiter
	respectRobots bool
	recorder      Recorder
	logger        *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithDelay sets the pause between consecutive checks. Zero disables it.
func WithDelay(d time.Duration) Option {
	return func(v *Validator) { v.limiter = newLimiter(d) }
}

func WithRobots(respect bool) Option { return func(v *Validator) { v.respectRobots = respect } }

func WithRecorder(r Recorder) Option { return func(v *Validator) { v.recorder = r } }

func WithLogger(l *slog.Logger) Option { return func(v *Validator) { v.logger = l } }

// New creates a Validator that checks one URL every 500ms by default.
func New(client Header, opts ...Option) *Validator {
	v := &Validator{
		client:  client,
		limiter: newLimiter(500 * time.Millisecond),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func newLimiter(d time.Duration) *rate.Limiter {
	if d <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d), 1)
}

// Check classifies one candidate. Every candidate gets exactly one status.
func (v *Validator) Check(ctx context.Context, c models.CandidateURL) models.ValidationResult {
	result := models.ValidationResult{Candidate: c}

	if v.respectRobots && !v.client.Allowed(ctx, c.URL) {
		result.Status = models.StatusError
		result.Error = ErrDisallowed.Error()
		return result
	}

	head, err := v.client.Head(ctx, c.URL)
	switch {
	case err != nil:
		result.Status = models.StatusError
		result.Error = err.Error()
	case head.StatusCode != http.StatusOK:
		result.Status = models.StatusNotFound
		result.StatusCode = head.StatusCode
	case head.Redirected:
		result.Status = models.StatusRedirected
		result.FinalURL = head.FinalURL
	default:
		result.Status = models.StatusValid
	}
	return result
}

// ValidateAll checks every candidate in order, pausing between checks.
// It stops early only when ctx is cancelled.
func (v *Validator) ValidateAll(ctx context.Context, candidates []models.CandidateURL) (*Report, error) {
	report := &Report{}
	for _, c := range candidates {
		if err := v.limiter.Wait(ctx); err != nil {
			return report, err
		}

		v.logger.Info("Checking URL", "url", c.URL)
		result := v.Check(ctx, c)
		v.log(result)
		report.Add(result)

		if v.recorder != nil {
			if err := v.recorder.RecordCheck(result); err != nil {
				v.logger.Warn("Failed to record URL check", "url", c.URL, "error", err)
			}
		}
	}
	return report, nil
}

func (v *Validator) log(r models.ValidationResult) {
	switch r.Status {
	case models.StatusValid:
		v.logger.Info("Valid URL", "url", r.Candidate.URL)
	case models.StatusRedirected:
		v.logger.Warn("URL redirects", "url", r.Candidate.URL, "final_url", r.FinalURL)
	case models.StatusNotFound:
		v.logger.Error("Invalid URL", "url", r.Candidate.URL, "status_code", r.StatusCode)
	case models.StatusError:
		v.logger.Error("Error checking URL", "url", r.Candidate.URL, "error", r.Error)
	}
}

// Report partitions validation results by status.
type Report struct {
	Results    []models.ValidationResult
	Valid      []models.ValidationResult
	Redirected []models.ValidationResult
	NotFound   []models.ValidationResult
	Errored    []models.ValidationResult
}

// Add files a result under its status.
func (r *Report) Add(result models.ValidationResult) {
	r.Results = append(r.Results, result)
	switch result.Status {
	case models.StatusValid:
		r.Valid = append(r.Valid, result)
	case models.StatusRedirected:
		r.Redirected = append(r.Redirected, result)
	case models.StatusNotFound:
		r.NotFound = append(r.NotFound, result)
	default:
		r.Errored = append(r.Errored, result)
	}
}

// Blocked reports whether any URL needs manual correction. A blocked report
// must not proceed to scraping.
func (r *Report) Blocked() bool {
	return len(r.NotFound) > 0 || len(r.Errored) > 0
}

// ValidURLs returns the URLs that can be scraped, in check order.
func (r *Report) ValidURLs() []string {
	urls := make([]string, 0, len(r.Valid))
	for _, res := range r.Valid {
		urls = append(urls, res.Candidate.URL)
	}
	return urls
}

// InvalidURLs builds the manual-fix map keyed by URL. Category and title are
// the last two path segments of the checked URL.
func (r *Report) InvalidURLs() map[string]models.InvalidURL {
	out := make(map[string]models.InvalidURL, len(r.NotFound)+len(r.Errored))
	for _, res := range append(append([]models.ValidationResult{}, r.NotFound...), r.Errored...) {
		u := res.Candidate.URL
		category, title := lastSegments(u)
		out[u] = models.InvalidURL{
			Category:   category,
			Title:      title,
			StatusCode: res.StatusCode,
			Error:      res.Error,
		}
	}
	return out
}

// lastSegments splits the URL path without cleaning it, so an empty slug
// stays empty.
func lastSegments(rawURL string) (string, string) {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	parts := strings.Split(p, "/")
	if len(parts) < 2 {
		return "", parts[len(parts)-1]
	}
	return parts[len(parts)-2], parts[len(parts)-1]
}
