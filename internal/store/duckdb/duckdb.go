package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimemonitor/internal/domain"
	"github.com/hamed0406/uptimemonitor/internal/store"
)

// Store persists probe rows in an embedded DuckDB database file. An empty
// path opens an in-memory database (used by tests).
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

func New(ctx context.Context, path string, log *zap.Logger) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("opening duckdb at %q: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging duckdb: %w", err)
	}

	s := &Store{db: db, log: log}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// init creates the schema. Safe to run repeatedly.
func (s *Store) init(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS uptime_checks (
			ts            TIMESTAMP NOT NULL,
			url           TEXT NOT NULL,
			is_up         BOOLEAN NOT NULL,
			response_time DOUBLE,
			status_code   INTEGER,
			error_message TEXT
		)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating uptime_checks table: %w", err)
	}
	const index = `CREATE INDEX IF NOT EXISTS idx_url_ts ON uptime_checks (url, ts)`
	if _, err := s.db.ExecContext(ctx, index); err != nil {
		return fmt.Errorf("creating uptime_checks index: %w", err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, r *domain.ProbeResult) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO uptime_checks (ts, url, is_up, response_time, status_code, error_message)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.Timestamp, r.URL, r.Up, r.ResponseTime, r.StatusCode, r.ErrorMessage)
	if err != nil {
		return fmt.Errorf("appending probe result: %w", err)
	}
	return nil
}

func (s *Store) ByDate(ctx context.Context, url string, day time.Time) ([]domain.ProbeResult, error) {
	start, end := store.DayRange(day)
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, url, is_up, response_time, status_code, error_message
		   FROM uptime_checks
		  WHERE url = ? AND ts >= ? AND ts < ?
		  ORDER BY ts`,
		url, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying checks by date: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

func (s *Store) Recent(ctx context.Context, url string, limit int) ([]domain.ProbeResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, url, is_up, response_time, status_code, error_message
		   FROM uptime_checks
		  WHERE url = ?
		  ORDER BY ts DESC
		  LIMIT ?`,
		url, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent checks: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

func (s *Store) Prune(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	res, err := s.db.ExecContext(ctx, `DELETE FROM uptime_checks WHERE ts < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning old checks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading pruned row count: %w", err)
	}
	return n, nil
}

func (s *Store) Close() error { return s.db.Close() }

func scanRows(rows *sql.Rows) ([]domain.ProbeResult, error) {
	var out []domain.ProbeResult
	for rows.Next() {
		var r domain.ProbeResult
		if err := rows.Scan(&r.Timestamp, &r.URL, &r.Up, &r.ResponseTime, &r.StatusCode, &r.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning probe row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

var _ store.ResultStore = (*Store)(nil)
