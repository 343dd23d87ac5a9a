// Package history persists run records so `bcup history` can answer what
// the daemon did and when.
package history

import (
	"database/sql"
	"fmt"

	"bcup-go/internal/bcup"
	"bcup-go/internal/history/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements bcup.HistoryStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and migrates) a history database.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) RecordRun(rec *bcup.RunRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO runs (
			id, job_id, method, snapshot_name, status, error_kind,
			added, modified, removed, skipped, pruned,
			started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.JobID, rec.Method, rec.SnapshotName, rec.Status, rec.ErrorKind,
		rec.Added, rec.Modified, rec.Removed, rec.Skipped, rec.Pruned,
		rec.StartedAt, rec.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting run record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListRuns(limit int) ([]*bcup.RunRecord, error) {
	if limit <= 0 {
		// SQLite treats a negative LIMIT as unlimited.
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT id, job_id, method, snapshot_name, status, error_kind,
		       added, modified, removed, skipped, pruned,
		       started_at, finished_at
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing run records: %w", err)
	}
	defer rows.Close()

	var recs []*bcup.RunRecord
	for rows.Next() {
		rec := &bcup.RunRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.JobID, &rec.Method, &rec.SnapshotName, &rec.Status, &rec.ErrorKind,
			&rec.Added, &rec.Modified, &rec.Removed, &rec.Skipped, &rec.Pruned,
			&rec.StartedAt, &rec.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning run record: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading run records: %w", err)
	}
	return recs, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ bcup.HistoryStore = (*SQLiteStore)(nil)
