package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Run status values
const (
	RunRunning     = "running"
	RunSuccess     = "success"
	RunPartial     = "partial"
	RunInterrupted = "interrupted"
)

// Run represents one scrape invocation
type Run struct {
	RunID            int64      `json:"run_id" yaml:"run_id"`
	StartedAt        time.Time  `json:"started_at" yaml:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Year             string     `json:"year" yaml:"year"`
	Sink             string     `json:"sink" yaml:"sink"`
	DryRun           bool       `json:"dry_run" yaml:"dry_run"`
	RulesVersion     string     `json:"rules_version" yaml:"rules_version"`
	Status           string     `json:"status" yaml:"status"`
	SourcesSeen      int        `json:"sources_seen" yaml:"sources_seen"`
	SourcesSkipped   int        `json:"sources_skipped" yaml:"sources_skipped"`
	SourcesProcessed int        `json:"sources_processed" yaml:"sources_processed"`
	SourcesFailed    int        `json:"sources_failed" yaml:"sources_failed"`
	DocumentsPlaced  int        `json:"documents_placed" yaml:"documents_placed"`
	DocumentsFailed  int        `json:"documents_failed" yaml:"documents_failed"`
}

// RunStats are the counters written when a run finishes
type RunStats struct {
	Status           string
	SourcesSeen      int
	SourcesSkipped   int
	SourcesProcessed int
	SourcesFailed    int
	DocumentsPlaced  int
	DocumentsFailed  int
}

// RunSource is one archive URL considered by a run
type RunSource struct {
	URL          string `json:"url" yaml:"url"`
	Origin       string `json:"origin,omitempty" yaml:"origin,omitempty"`
	Status       string `json:"status" yaml:"status"`
	ErrorType    string `json:"error_type,omitempty" yaml:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	Documents    int    `json:"documents" yaml:"documents"`
}

// Placement is one destination written (or attempted) by a run
type Placement struct {
	SourceURL    string `json:"source_url" yaml:"source_url"`
	Document     string `json:"document" yaml:"document"`
	Destination  string `json:"destination,omitempty" yaml:"destination,omitempty"`
	Subject      string `json:"subject,omitempty" yaml:"subject,omitempty"`
	Session      string `json:"session,omitempty" yaml:"session,omitempty"`
	Outcome      string `json:"outcome" yaml:"outcome"`
	ErrorType    string `json:"error_type,omitempty" yaml:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	SizeBytes    int64  `json:"size_bytes" yaml:"size_bytes"`
	ContentHash  string `json:"content_hash,omitempty" yaml:"content_hash,omitempty"`
}

// CreateRun inserts a new run in the running state
func (db *DB) CreateRun(year, sink string, dryRun bool, rulesVersion string) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO runs (year, sink, dry_run, rules_version, status)
		VALUES (?, ?, ?, ?, ?)
	`, year, sink, dryRun, rulesVersion, RunRunning)
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return runID, nil
}

// FinishRun stores the final counters and status for a run
func (db *DB) FinishRun(runID int64, stats RunStats) error {
	_, err := db.Exec(`
		UPDATE runs
		SET finished_at = CURRENT_TIMESTAMP, status = ?,
		    sources_seen = ?, sources_skipped = ?, sources_processed = ?, sources_failed = ?,
		    documents_placed = ?, documents_failed = ?
		WHERE run_id = ?
	`, stats.Status, stats.SourcesSeen, stats.SourcesSkipped, stats.SourcesProcessed, stats.SourcesFailed,
		stats.DocumentsPlaced, stats.DocumentsFailed, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// InsertRunSource records one attempt at a source URL. Repeat attempts in
// the same run are kept as separate rows.
func (db *DB) InsertRunSource(runID int64, src RunSource) error {
	_, err := db.Exec(`
		INSERT INTO run_sources (run_id, url, origin, status, error_type, error_message, documents)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, runID, src.URL, NewNullString(src.Origin), src.Status, NewNullString(src.ErrorType),
		NewNullString(src.ErrorMessage), src.Documents)
	if err != nil {
		return fmt.Errorf("failed to insert run source: %w", err)
	}
	return nil
}

// InsertPlacement records one placement attempt
func (db *DB) InsertPlacement(runID int64, p Placement) error {
	_, err := db.Exec(`
		INSERT INTO placements (run_id, source_url, document, destination, subject, session, outcome, error_type, error_message, size_bytes, content_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, p.SourceURL, p.Document, NewNullString(p.Destination), NewNullString(p.Subject),
		NewNullString(p.Session), p.Outcome, NewNullString(p.ErrorType), NewNullString(p.ErrorMessage), p.SizeBytes,
		NewNullString(p.ContentHash))
	if err != nil {
		return fmt.Errorf("failed to insert placement: %w", err)
	}
	return nil
}

const runColumns = `run_id, started_at, finished_at, year, sink, dry_run, rules_version, status,
	sources_seen, sources_skipped, sources_processed, sources_failed, documents_placed, documents_failed`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		r        Run
		finished sql.NullTime
		rulesVer sql.NullString
	)
	err := row.Scan(&r.RunID, &r.StartedAt, &finished, &r.Year, &r.Sink, &r.DryRun, &rulesVer, &r.Status,
		&r.SourcesSeen, &r.SourcesSkipped, &r.SourcesProcessed, &r.SourcesFailed, &r.DocumentsPlaced, &r.DocumentsFailed)
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		t := finished.Time
		r.FinishedAt = &t
	}
	r.RulesVersion = rulesVer.String
	return &r, nil
}

// GetRunByID retrieves a run by its ID
func (db *DB) GetRunByID(runID int64) (*Run, error) {
	r, err := scanRun(db.QueryRow("SELECT "+runColumns+" FROM runs WHERE run_id = ?", runID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return r, nil
}

// ListRuns retrieves runs ordered by most recent first
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY run_id DESC"
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
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// GetRunSources retrieves the sources recorded for a run
func (db *DB) GetRunSources(runID int64) ([]RunSource, error) {
	rows, err := db.Query(`
		SELECT url, origin, status, error_type, error_message, documents
		FROM run_sources
		WHERE run_id = ?
		ORDER BY source_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run sources: %w", err)
	}
	defer rows.Close()

	var sources []RunSource
	for rows.Next() {
		var (
			s                           RunSource
			origin, errType, errMessage sql.NullString
		)
		if err := rows.Scan(&s.URL, &origin, &s.Status, &errType, &errMessage, &s.Documents); err != nil {
			return nil, fmt.Errorf("failed to scan run source: %w", err)
		}
		s.Origin, s.ErrorType, s.ErrorMessage = origin.String, errType.String, errMessage.String
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// GetRunPlacements retrieves the placements recorded for a run
func (db *DB) GetRunPlacements(runID int64) ([]Placement, error) {
	rows, err := db.Query(`
		SELECT source_url, document, destination, subject, session, outcome, error_type, error_message, size_bytes, content_hash
		FROM placements
		WHERE run_id = ?
		ORDER BY placement_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run placements: %w", err)
	}
	defer rows.Close()

	var placements []Placement
	for rows.Next() {
		var (
			p                                           Placement
			dest, subject, session, errType, errMessage sql.NullString
			hash                                        sql.NullString
			size                                        sql.NullInt64
		)
		if err := rows.Scan(&p.SourceURL, &p.Document, &dest, &subject, &session, &p.Outcome,
			&errType, &errMessage, &size, &hash); err != nil {
			return nil, fmt.Errorf("failed to scan placement: %w", err)
		}
		p.Destination, p.Subject, p.Session = dest.String, subject.String, session.String
		p.ErrorType, p.ErrorMessage, p.SizeBytes = errType.String, errMessage.String, size.Int64
		p.ContentHash = hash.String
		placements = append(placements, p)
	}
	return placements, rows.Err()
}

// NewNullString converts empty strings to NULL
func NewNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
