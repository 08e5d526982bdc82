package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dtnitsch/discoverjesus-scraper/models"
	"github.com/dtnitsch/discoverjesus-scraper/pkg/db"
	"github.com/dtnitsch/discoverjesus-scraper/pkg/fetcher"
	"github.com/dtnitsch/discoverjesus-scraper/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const philipPage = `<html><body>
	<h1 class="entry-title">Philip, Apostle of Jesus</h1>
	<div class="entry-subtitle">The practical apostle.</div>
	<div class="summary-section"><p>Philip was the fifth apostle chosen.</p></div>
</body></html>`

const emptyPage = `<html><body><h1>True Values</h1></body></html>`

// newSite serves a small version of the target site. Paths not listed
// return 404.
func newSite(t *testing.T, extra map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := extra[r.URL.Path]; ok {
			h(w, r)
			return
		}
		switch r.URL.Path {
		case "/person/philip-apostle-of-jesus":
			w.Write([]byte(philipPage))
		case "/topic/true-values":
			w.Write([]byte(emptyPage))
		case "/person/old-name":
			http.Redirect(w, r, "/person/philip-apostle-of-jesus", http.StatusMovedPermanently)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func writeTree(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tree.txt")
	require.NoError(t, os.WriteFile(path, []byte("New Series\n"+strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

func testConfig(t *testing.T, baseURL, treeFile string) *models.ScrapeConfig {
	t.Helper()
	dir := t.TempDir()
	cfg := models.DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.TreeFile = treeFile
	cfg.OutputDir = filepath.Join(dir, "scraper")
	cfg.DataModule = filepath.Join(dir, "src", "data", "discoverJesusSummaries.ts")
	cfg.CheckDelay = 0
	cfg.ScrapeDelay = 0
	cfg.Timeout = 5 * time.Second
	return cfg
}

func noSleep(context.Context, time.Duration) error { return nil }

func newTestPipeline(t *testing.T, cfg *models.ScrapeConfig, opts ...Option) *Pipeline {
	t.Helper()
	opts = append([]Option{WithFetcherOptions(fetcher.WithSleep(noSleep))}, opts...)
	p, err := New(cfg, opts...)
	require.NoError(t, err)
	return p
}

func setupHistory(t *testing.T) *db.DB {
	t.Helper()
	h, err := db.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.MaxAttempts = 0
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestRunScrape_EndToEnd(t *testing.T) {
	server := newSite(t, nil)
	cfg := testConfig(t, server.URL, writeTree(t,
		"├── Person - Philip.mp3",
		"├── Topic - True Values.mp3",
		"└── Person - Philip.docx",
	))
	history := setupHistory(t)

	var asked []string
	p := newTestPipeline(t, cfg,
		WithHistory(history),
		WithConfirm(func(q string) bool { asked = append(asked, q); return true }),
	)

	res, err := p.RunScrape(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{ConfirmPrompt}, asked)

	assert.Equal(t, 2, res.Scraped)
	assert.Equal(t, 1, res.Empty)
	assert.Zero(t, res.Failed)
	require.Len(t, res.Summaries, 1)
	assert.Equal(t, "person/philip-apostle-of-jesus", res.Summaries[0].ID)
	assert.Equal(t, 1, res.ModuleEntries)

	store := p.Storage()
	summaries, err := store.LoadSummaries(store.Path(storage.SummariesFile))
	require.NoError(t, err)
	assert.Equal(t, res.Summaries, summaries)

	progress, err := store.LoadSummaries(store.Path(storage.ProgressFile))
	require.NoError(t, err)
	assert.Equal(t, res.Summaries, progress)

	module, err := os.ReadFile(cfg.DataModule)
	require.NoError(t, err)
	assert.Contains(t, string(module), `"person/philip-apostle-of-jesus"`)
	assert.NotContains(t, string(module), "true-values")

	_, err = os.Stat(filepath.Join(cfg.OutputDir, "debug", "philip-apostle-of-jesus.html"))
	assert.NoError(t, err, "fetched bodies are mirrored for debugging")

	runs, err := history.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "scrape", runs[0].Command)
	assert.Equal(t, db.OutcomeCompleted, runs[0].Outcome)
	assert.Equal(t, 2, runs[0].CandidateCount)
	assert.Equal(t, 2, runs[0].ScrapedCount)

	checks, err := history.GetRunChecks(runs[0].RunID)
	require.NoError(t, err)
	assert.Len(t, checks, 2)
	fetches, err := history.GetRunFetches(runs[0].RunID)
	require.NoError(t, err)
	assert.Len(t, fetches, 2)
}

func TestRunScrape_BlockedByInvalidURL(t *testing.T) {
	server := newSite(t, nil)
	cfg := testConfig(t, server.URL, writeTree(t,
		"├── Person - Philip.mp3",
		"├── Event - No Such Event.mp3",
	))
	history := setupHistory(t)

	confirmed := false
	p := newTestPipeline(t, cfg,
		WithHistory(history),
		WithConfirm(func(string) bool { confirmed = true; return true }),
	)

	_, err := p.RunScrape(context.Background())
	require.ErrorIs(t, err, ErrValidationBlocked)
	assert.False(t, confirmed, "operator is never asked while URLs need fixing")

	_, err = os.Stat(p.Storage().Path(storage.ProgressFile))
	assert.True(t, os.IsNotExist(err), "nothing is fetched when blocked")

	data, err := os.ReadFile(p.Storage().Path(storage.InvalidURLsFile))
	require.NoError(t, err)
	var invalid map[string]models.InvalidURL
	require.NoError(t, json.Unmarshal(data, &invalid))
	entry, ok := invalid[server.URL+"/event/no-such-event"]
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, entry.StatusCode)
	assert.Empty(t, entry.CorrectURL)

	runs, err := history.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, db.OutcomeBlocked, runs[0].Outcome)
	assert.Equal(t, 1, runs[0].NotFoundCount)
}

func TestRunScrape_NoValidURLs(t *testing.T) {
	server := newSite(t, nil)
	cfg := testConfig(t, server.URL, writeTree(t, "├── Event - No Such Event.mp3"))

	_, err := newTestPipeline(t, cfg).RunScrape(context.Background())
	assert.ErrorIs(t, err, ErrNoValidURLs)
}

func TestRunScrape_Declined(t *testing.T) {
	server := newSite(t, nil)
	cfg := testConfig(t, server.URL, writeTree(t, "├── Person - Philip.mp3"))

	p := newTestPipeline(t, cfg, WithConfirm(func(string) bool { return false }))
	_, err := p.RunScrape(context.Background())
	assert.ErrorIs(t, err, ErrDeclined)

	_, err = os.Stat(cfg.DataModule)
	assert.True(t, os.IsNotExist(err))
}

func TestRunValidate_RedirectOnlyPasses(t *testing.T) {
	server := newSite(t, map[string]http.HandlerFunc{})
	cfg := testConfig(t, server.URL, writeTree(t,
		"├── Person - Philip.mp3",
		"├── Person - Old Name.mp3",
	))
	p := newTestPipeline(t, cfg, WithClock(func() time.Time {
		return time.Date(2024, 3, 1, 14, 5, 9, 0, time.UTC)
	}))

	report, err := p.RunValidate(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Valid, 1)
	assert.Len(t, report.Redirected, 1)

	summaryLog := filepath.Join(cfg.OutputDir, storage.LogsDir, "url_summary_20240301_140509.log")
	data, err := os.ReadFile(summaryLog)
	require.NoError(t, err)
	assert.Contains(t, string(data), "REDIRECTING URLs:")

	var valid []string
	raw, err := os.ReadFile(p.Storage().Path(storage.ValidURLsFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &valid))
	assert.Equal(t, []string{server.URL + "/person/philip-apostle-of-jesus"}, valid)
}

func TestScrape_FailuresAreLoggedAndSkipped(t *testing.T) {
	server := newSite(t, map[string]http.HandlerFunc{
		"/event/broken": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	})
	cfg := testConfig(t, server.URL, writeTree(t))
	p := newTestPipeline(t, cfg)

	res, err := p.Scrape(context.Background(), []string{
		server.URL + "/event/broken",
		server.URL + "/person/philip-apostle-of-jesus",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Scraped)
	require.Len(t, res.Summaries, 1)

	errorsLog, err := os.ReadFile(p.Storage().Path(storage.ErrorsLogFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(errorsLog), server.URL+"/event/broken: "))
	assert.Contains(t, string(errorsLog), "500")
}

// cancelSink cancels the run once the first page body has been read.
type cancelSink struct{ cancel context.CancelFunc }

func (s cancelSink) SaveDebugHTML(string, []byte) error {
	s.cancel()
	return nil
}

func TestScrape_CancelKeepsCheckpoint(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	server := newSite(t, nil)
	cfg := testConfig(t, server.URL, writeTree(t))
	cfg.ScrapeDelay = time.Hour
	p := newTestPipeline(t, cfg, WithFetcherOptions(fetcher.WithDebugSink(cancelSink{cancel: cancel})))

	res, err := p.Scrape(ctx, []string{
		server.URL + "/person/philip-apostle-of-jesus",
		server.URL + "/topic/true-values",
	})
	require.True(t, errors.Is(err, context.Canceled), "got %v", err)
	require.Len(t, res.Summaries, 1)

	progress, err := p.Storage().LoadSummaries(p.Storage().Path(storage.ProgressFile))
	require.NoError(t, err)
	assert.Len(t, progress, 1)

	_, err = os.Stat(p.Storage().Path(storage.SummariesFile))
	assert.True(t, os.IsNotExist(err), "final artifacts are only written by a finished scrape")
}

func TestScrape_PrunesStaleDebugHTML(t *testing.T) {
	server := newSite(t, nil)
	cfg := testConfig(t, server.URL, writeTree(t))
	cfg.DebugMaxAge = time.Hour
	p := newTestPipeline(t, cfg)

	stale := filepath.Join(cfg.OutputDir, "debug", "removed-page.html")
	require.NoError(t, os.WriteFile(stale, []byte("<html></html>"), 0600))
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, past, past))

	_, err := p.Scrape(context.Background(), []string{server.URL + "/person/philip-apostle-of-jesus"})
	require.NoError(t, err)

	assert.NoFileExists(t, stale)
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "debug", "philip-apostle-of-jesus.html"))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, db.OutcomeCompleted, Outcome(nil))
	assert.Equal(t, db.OutcomeBlocked, Outcome(errors.Join(errors.New("x"), ErrValidationBlocked)))
	assert.Equal(t, db.OutcomeCancelled, Outcome(context.Canceled))
	assert.Equal(t, db.OutcomeFailed, Outcome(errors.New("disk full")))
}
