package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/temoto/robotstxt"
)

const DefaultMaxAttempts = 3

// TransportError is a network-level failure (DNS, connect, timeout, reset).
// Fetch retries these.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a response with a non-2xx status. It is never retried.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch %s, status code: %d", e.URL, e.StatusCode)
}

// DebugSink receives a copy of every successfully fetched body.
type DebugSink interface {
	SaveDebugHTML(name string, body []byte) error
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// HeadResult is what a HEAD check observed after following redirects.
type HeadResult struct {
	StatusCode int
	FinalURL   string
	// Redirected is true when the response came from a different URL than
	// the one requested. Both sides are compared in escaped form.
	Redirected bool
}

// Fetcher owns the single HTTP client shared by validation and scraping.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxAttempts int
	sleep       SleepFunc
	debug       DebugSink
	logger      *slog.Logger
	robots      map[string]*robotstxt.RobotsData
}

// Option configures a Fetcher.
type Option func(*Fetcher)

func WithClient(c *http.Client) Option { return func(f *Fetcher) { f.client = c } }

func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.client.Timeout = d }
}

func WithUserAgent(ua string) Option { return func(f *Fetcher) { f.userAgent = ua } }

func WithMaxAttempts(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

func WithSleep(fn SleepFunc) Option { return func(f *Fetcher) { f.sleep = fn } }

func WithDebugSink(s DebugSink) Option { return func(f *Fetcher) { f.debug = s } }

func WithLogger(l *slog.Logger) Option { return func(f *Fetcher) { f.logger = l } }

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: 30 * time.Second},
		maxAttempts: DefaultMaxAttempts,
		sleep:       sleepContext,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		robots:      make(map[string]*robotstxt.RobotsData),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (f *Fetcher) newRequest(ctx context.Context, method, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Connection", "keep-alive")
	return req, nil
}

// Head issues a HEAD request, following redirects, and reports the final
// status and URL. Network failures come back as *TransportError.
func (f *Fetcher) Head(ctx context.Context, rawURL string) (*HeadResult, error) {
	req, err := f.newRequest(ctx, http.MethodHead, rawURL)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	final := resp.Request.URL.String()
	return &HeadResult{
		StatusCode: resp.StatusCode,
		FinalURL:   final,
		Redirected: final != req.URL.String(),
	}, nil
}

// Fetch GETs rawURL. Transport failures are retried with exponential
// backoff (1s, 2s, ...) up to the configured attempts; the last failure is
// returned. Status errors return immediately.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < f.maxAttempts; attempt++ {
		f.logger.Debug("Fetching page", "url", rawURL, "attempt", attempt+1, "max_attempts", f.maxAttempts)

		body, err := f.get(ctx, rawURL)
		if err == nil {
			f.logger.Debug("Fetched page", "url", rawURL, "bytes", len(body))
			f.mirror(rawURL, body)
			return body, nil
		}

		var te *TransportError
		if !errors.As(err, &te) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
		f.logger.Warn("Fetch attempt failed", "url", rawURL, "attempt", attempt+1, "error", err)

		if attempt == f.maxAttempts-1 {
			break
		}
		backoff := time.Duration(1<<attempt) * time.Second
		if err := f.sleep(ctx, backoff); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := f.newRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	return body, nil
}

func (f *Fetcher) mirror(rawURL string, body []byte) {
	if f.debug == nil {
		return
	}
	if err := f.debug.SaveDebugHTML(DebugName(rawURL), body); err != nil {
		f.logger.Warn("Failed to save debug HTML", "url", rawURL, "error", err)
	}
}

// DebugName is the last path segment of rawURL, or "index" when that
// segment is empty (the root or a trailing slash).
func DebugName(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	name := p[strings.LastIndex(p, "/")+1:]
	if name == "" {
		return "index"
	}
	return name
}

// Allowed reports whether robots.txt of rawURL's host permits the path.
// An unreachable robots.txt allows everything. Results are cached per host.
func (f *Fetcher) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}

	robots, ok := f.robots[u.Host]
	if !ok {
		robots = f.loadRobots(ctx, u)
		f.robots[u.Host] = robots
	}
	if robots == nil {
		return true
	}
	return robots.TestAgent(u.Path, f.userAgent)
}

func (f *Fetcher) loadRobots(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
	req, err := f.newRequest(ctx, http.MethodGet, robotsURL)
	if err != nil {
		return nil
	}
	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("Could not load robots.txt", "url", robotsURL, "error", err)
		return nil
	}
	defer resp.Body.Close()

	robots, err := robotstxt.FromResponse(resp)
	if err != nil {
		f.logger.Warn("Could not parse robots.txt", "url", robotsURL, "error", err)
		return nil
	}
	return robots
}
