package db

import (
	"context"
	"fmt"
)

// LedgerStore keeps the dedup ledger in the processed_sources table.
type LedgerStore struct {
	db *DB
}

func NewLedgerStore(db *DB) *LedgerStore {
	return &LedgerStore{db: db}
}

// Load returns all processed source URLs in sorted order
func (s *LedgerStore) Load(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT url FROM processed_sources ORDER BY url")
	if err != nil {
		return nil, fmt.Errorf("failed to load processed sources: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan processed source: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// Save replaces the table contents with urls in one transaction.
// Existing rows keep their original processed_at.
func (s *LedgerStore) Save(ctx context.Context, urls []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	if _, err := tx.ExecContext(ctx, "CREATE TEMP TABLE IF NOT EXISTS keep_sources (url TEXT PRIMARY KEY)"); err != nil {
		return fmt.Errorf("failed to prepare ledger save: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM keep_sources"); err != nil {
		return fmt.Errorf("failed to prepare ledger save: %w", err)
	}

	for _, u := range urls {
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO keep_sources (url) VALUES (?)", u); err != nil {
			return fmt.Errorf("failed to stage processed source: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO processed_sources (url) VALUES (?)", u); err != nil {
			return fmt.Errorf("failed to insert processed source: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM processed_sources WHERE url NOT IN (SELECT url FROM keep_sources)"); err != nil {
		return fmt.Errorf("failed to prune processed sources: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger: %w", err)
	}
	return nil
}
