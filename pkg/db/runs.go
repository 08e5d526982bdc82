package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dtnitsch/discoverjesus-scraper/models"
)

// Run outcomes.
const (
	OutcomeRunning     = "running"
	OutcomeCompleted   = "completed"
	OutcomeBlocked     = "blocked"
	OutcomeNoValidURLs = "no_valid_urls"
	OutcomeDeclined    = "declined"
	OutcomeCancelled   = "cancelled"
	OutcomeFailed      = "failed"
)

// Run is one validate or scrape invocation.
type Run struct {
	RunID           int64
	Command         string
	BaseURL         string
	StartedAt       time.Time
	FinishedAt      sql.NullTime
	Outcome         string
	CandidateCount  int
	ValidCount      int
	RedirectedCount int
	NotFoundCount   int
	ErrorCount      int
	ScrapedCount    int
	FailedCount     int
}

// RunStats are the counters written when a run finishes.
type RunStats struct {
	Candidates int
	Valid      int
	Redirected int
	NotFound   int
	Errored    int
	Scraped    int
	Failed     int
}

// URLCheck is a stored validation result.
type URLCheck struct {
	CheckID    int64
	URL        string
	Category   string
	Slug       string
	Status     string
	StatusCode int
	FinalURL   string
	Error      string
	CheckedAt  time.Time
}

// PageFetch is a stored scrape attempt.
type PageFetch struct {
	FetchID    int64
	URL        string
	Success    bool
	HasContent bool
	Error      string
	FetchedAt  time.Time
}

// StartRun inserts a running row and returns its run_id.
func (db *DB) StartRun(command, baseURL string) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO runs (command, base_url, started_at, outcome)
		VALUES (?, ?, ?, ?)
	`, command, baseURL, time.Now().UTC(), OutcomeRunning)
	if err != nil {
		return 0, fmt.Errorf("failed to start run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return runID, nil
}

// FinishRun stamps the outcome and counters of a run.
func (db *DB) FinishRun(runID int64, outcome string, stats RunStats) error {
	res, err := db.Exec(`
		UPDATE runs
		SET finished_at = ?, outcome = ?,
		    candidate_count = ?, valid_count = ?, redirected_count = ?,
		    not_found_count = ?, error_count = ?, scraped_count = ?, failed_count = ?
		WHERE run_id = ?
	`, time.Now().UTC(), outcome,
		stats.Candidates, stats.Valid, stats.Redirected,
		stats.NotFound, stats.Errored, stats.Scraped, stats.Failed,
		runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %d not found", runID)
	}
	return nil
}

// RecordCheck stores one validation result under runID.
func (db *DB) RecordCheck(runID int64, r models.ValidationResult) error {
	_, err := db.Exec(`
		INSERT INTO url_checks (run_id, url, category, slug, status, status_code, final_url, error_message, checked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, r.Candidate.URL, string(r.Candidate.Category), r.Candidate.Slug, string(r.Status),
		r.StatusCode, r.FinalURL, r.Error, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record check: %w", err)
	}
	return nil
}

// RecordFetch stores one scrape attempt under runID. A nil fetchErr is a
// success.
func (db *DB) RecordFetch(runID int64, url string, hasContent bool, fetchErr error) error {
	var msg string
	if fetchErr != nil {
		msg = fetchErr.Error()
	}
	_, err := db.Exec(`
		INSERT INTO page_fetches (run_id, url, success, has_content, error_message, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, url, fetchErr == nil, hasContent, msg, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record fetch: %w", err)
	}
	return nil
}

// GetRun returns a run by ID.
func (db *DB) GetRun(runID int64) (*Run, error) {
	var r Run
	err := db.QueryRow(`
		SELECT run_id, command, base_url, started_at, finished_at, outcome,
		       candidate_count, valid_count, redirected_count, not_found_count,
		       error_count, scraped_count, failed_count
		FROM runs WHERE run_id = ?
	`, runID).Scan(&r.RunID, &r.Command, &r.BaseURL, &r.StartedAt, &r.FinishedAt, &r.Outcome,
		&r.CandidateCount, &r.ValidCount, &r.RedirectedCount, &r.NotFoundCount,
		&r.ErrorCount, &r.ScrapedCount, &r.FailedCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &r, nil
}

// ListRuns returns the most recent runs first. A non-positive limit lists
// all of them.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `
		SELECT run_id, command, base_url, started_at, finished_at, outcome,
		       candidate_count, valid_count, redirected_count, not_found_count,
		       error_count, scraped_count, failed_count
		FROM runs
		ORDER BY run_id DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.Command, &r.BaseURL, &r.StartedAt, &r.FinishedAt, &r.Outcome,
			&r.CandidateCount, &r.ValidCount, &r.RedirectedCount, &r.NotFoundCount,
			&r.ErrorCount, &r.ScrapedCount, &r.FailedCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// GetRunChecks returns the validation results of a run in check order.
func (db *DB) GetRunChecks(runID int64) ([]URLCheck, error) {
	rows, err := db.Query(`
		SELECT check_id, url, category, slug, status, status_code, final_url, error_message, checked_at
		FROM url_checks
		WHERE run_id = ?
		ORDER BY check_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run checks: %w", err)
	}
	defer rows.Close()

	var checks []URLCheck
	for rows.Next() {
		var c URLCheck
		if err := rows.Scan(&c.CheckID, &c.URL, &c.Category, &c.Slug, &c.Status,
			&c.StatusCode, &c.FinalURL, &c.Error, &c.CheckedAt); err != nil {
			return nil, fmt.Errorf("failed to scan check: %w", err)
		}
		checks = append(checks, c)
	}

	return checks, rows.Err()
}

// GetRunFetches returns the scrape attempts of a run in fetch order.
func (db *DB) GetRunFetches(runID int64) ([]PageFetch, error) {
	rows, err := db.Query(`
		SELECT fetch_id, url, success, has_content, error_message, fetched_at
		FROM page_fetches
		WHERE run_id = ?
		ORDER BY fetch_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run fetches: %w", err)
	}
	defer rows.Close()

	var fetches []PageFetch
	for rows.Next() {
		var f PageFetch
		if err := rows.Scan(&f.FetchID, &f.URL, &f.Success, &f.HasContent, &f.Error, &f.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fetch: %w", err)
		}
		fetches = append(fetches, f)
	}

	return fetches, rows.Err()
}

// RunRecorder binds RecordCheck to a single run.
type RunRecorder struct {
	db    *DB
	runID int64
}

// Recorder returns a recorder that files results under runID.
func (db *DB) Recorder(runID int64) *RunRecorder {
	return &RunRecorder{db: db, runID: runID}
}

func (r *RunRecorder) RunID() int64 { return r.runID }

func (r *RunRecorder) RecordCheck(result models.ValidationResult) error {
	return r.db.RecordCheck(r.runID, result)
}

func (r *RunRecorder) RecordFetch(url string, hasContent bool, fetchErr error) error {
	return r.db.RecordFetch(r.runID, url, hasContent, fetchErr)
}
