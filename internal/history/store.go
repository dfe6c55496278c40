// Package history persists global-stats snapshots in SQLite so
// platform trends survive across runs of a stateless CLI.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/botdesk/botusage/internal/types"
)

// Snapshot is one recorded observation of the platform totals.
type Snapshot struct {
	ID         int64             `json:"id"`
	RecordedAt time.Time         `json:"recorded_at"`
	Stats      types.GlobalStats `json:"stats"`
}

type Store struct {
	db   *sql.DB
	path string
}

// Open creates the database file if needed and migrates the schema.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &Store{db: db, path: path}
	if err := store.configure(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}
	return nil
}

func (s *Store) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	recorded_at TEXT NOT NULL,
	total_users INTEGER NOT NULL,
	total_companies INTEGER NOT NULL,
	total_licenses INTEGER NOT NULL,
	active_licenses INTEGER NOT NULL,
	total_tokens INTEGER NOT NULL,
	total_requests INTEGER NOT NULL,
	total_cost_eur REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_recorded_at ON snapshots(recorded_at);
`
	if _, err := s.db.ExecContext(context.Background(), schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Save appends one snapshot.
func (s *Store) Save(ctx context.Context, stats types.GlobalStats) (int64, error) {
	recordedAt := stats.GeneratedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
INSERT INTO snapshots (recorded_at, total_users, total_companies, total_licenses,
	active_licenses, total_tokens, total_requests, total_cost_eur)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		recordedAt.UTC().Format(time.RFC3339),
		stats.TotalUsers, stats.TotalCompanies, stats.TotalLicenses,
		stats.ActiveLicenses, stats.TotalTokens, stats.TotalRequests,
		stats.TotalCostEUR,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save snapshot: %w", err)
	}
	return result.LastInsertId()
}

// Recent returns up to limit snapshots, oldest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, recorded_at, total_users, total_companies, total_licenses,
	active_licenses, total_tokens, total_requests, total_cost_eur
FROM (
	SELECT * FROM snapshots ORDER BY recorded_at DESC, id DESC LIMIT ?
) ORDER BY recorded_at ASC, id ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

// Since returns all snapshots recorded at or after t, oldest first.
func (s *Store) Since(ctx context.Context, t time.Time) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, recorded_at, total_users, total_companies, total_licenses,
	active_licenses, total_tokens, total_requests, total_cost_eur
FROM snapshots WHERE recorded_at >= ? ORDER BY recorded_at ASC, id ASC`,
		t.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

func scanSnapshots(rows *sql.Rows) ([]Snapshot, error) {
	var snapshots []Snapshot
	for rows.Next() {
		var snap Snapshot
		var recordedAt string
		if err := rows.Scan(&snap.ID, &recordedAt,
			&snap.Stats.TotalUsers, &snap.Stats.TotalCompanies,
			&snap.Stats.TotalLicenses, &snap.Stats.ActiveLicenses,
			&snap.Stats.TotalTokens, &snap.Stats.TotalRequests,
			&snap.Stats.TotalCostEUR,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		ts, err := time.Parse(time.RFC3339, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid recorded_at %q: %w", recordedAt, err)
		}
		snap.RecordedAt = ts
		snap.Stats.GeneratedAt = ts
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}
