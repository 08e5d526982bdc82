package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Runs: one row per validate or scrape invocation
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    command TEXT NOT NULL,            -- validate, scrape
    base_url TEXT NOT NULL,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP,
    outcome TEXT NOT NULL DEFAULT 'running',  -- running, completed, blocked, no_valid_urls, declined, cancelled, failed

    candidate_count INTEGER DEFAULT 0,
    valid_count INTEGER DEFAULT 0,
    redirected_count INTEGER DEFAULT 0,
    not_found_count INTEGER DEFAULT 0,
    error_count INTEGER DEFAULT 0,
    scraped_count INTEGER DEFAULT 0,
    failed_count INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

-- URL checks: every HEAD validation result
CREATE TABLE IF NOT EXISTS url_checks (
    check_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    url TEXT NOT NULL,
    category TEXT,
    slug TEXT,
    status TEXT NOT NULL,             -- valid, redirected, not_found, error
    status_code INTEGER,
    final_url TEXT,
    error_message TEXT,
    checked_at TIMESTAMP NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_checks_run ON url_checks(run_id);
CREATE INDEX IF NOT EXISTS idx_checks_status ON url_checks(status);

-- Page fetches: every scrape attempt
CREATE TABLE IF NOT EXISTS page_fetches (
    fetch_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    url TEXT NOT NULL,
    success BOOLEAN NOT NULL,
    has_content BOOLEAN DEFAULT 0,
    error_message TEXT,
    fetched_at TIMESTAMP NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_fetches_run ON page_fetches(run_id);
`
