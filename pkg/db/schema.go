package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Runs: one row per scrape invocation
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    finished_at TIMESTAMP,
    year TEXT NOT NULL,
    sink TEXT NOT NULL,
    dry_run BOOLEAN DEFAULT 0,
    rules_version TEXT,
    status TEXT NOT NULL DEFAULT 'running', -- running, success, partial, interrupted
    sources_seen INTEGER DEFAULT 0,
    sources_skipped INTEGER DEFAULT 0,
    sources_processed INTEGER DEFAULT 0,
    sources_failed INTEGER DEFAULT 0,
    documents_placed INTEGER DEFAULT 0,
    documents_failed INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);

-- Run sources: every archive URL considered by a run
CREATE TABLE IF NOT EXISTS run_sources (
    source_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    url TEXT NOT NULL,
    origin TEXT,
    status TEXT NOT NULL,         -- processed, skipped, failed, empty
    error_type TEXT,
    error_message TEXT,
    documents INTEGER DEFAULT 0,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

-- A source linked from several pages, or retried after a failure, gets one
-- row per attempt within the same run.
CREATE INDEX IF NOT EXISTS idx_run_sources_url ON run_sources(run_id, url);
CREATE INDEX IF NOT EXISTS idx_run_sources_run ON run_sources(run_id);
CREATE INDEX IF NOT EXISTS idx_run_sources_status ON run_sources(status);

-- Placements: one row per destination key written (or attempted)
CREATE TABLE IF NOT EXISTS placements (
    placement_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    source_url TEXT NOT NULL,
    document TEXT NOT NULL,
    destination TEXT,
    subject TEXT,
    session TEXT,
    outcome TEXT NOT NULL,        -- written, unchanged, conflict, dry_run, failed
    error_type TEXT,
    error_message TEXT,
    size_bytes INTEGER,
    content_hash TEXT,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_placements_run ON placements(run_id);
CREATE INDEX IF NOT EXISTS idx_placements_destination ON placements(destination);
CREATE INDEX IF NOT EXISTS idx_placements_hash ON placements(content_hash);

-- Processed sources: the dedup ledger
CREATE TABLE IF NOT EXISTS processed_sources (
    url TEXT PRIMARY KEY,
    processed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`
