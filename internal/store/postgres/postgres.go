package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimemonitor/internal/domain"
	"github.com/hamed0406/uptimemonitor/internal/store"
)

// Store persists probe rows in PostgreSQL, selected by configuring
// database_url. Schema creation is idempotent.
type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	s := &Store{pool: pool, log: log}
	if err := s.init(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS uptime_checks (
			id            BIGSERIAL PRIMARY KEY,
			ts            TIMESTAMPTZ NOT NULL,
			url           TEXT NOT NULL,
			is_up         BOOLEAN NOT NULL,
			response_time DOUBLE PRECISION,
			status_code   INTEGER,
			error_message TEXT
		)`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating uptime_checks table: %w", err)
	}
	const index = `CREATE INDEX IF NOT EXISTS idx_uptime_checks_url_ts ON uptime_checks (url, ts)`
	if _, err := s.pool.Exec(ctx, index); err != nil {
		return fmt.Errorf("creating uptime_checks index: %w", err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, r *domain.ProbeResult) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO uptime_checks (ts, url, is_up, response_time, status_code, error_message)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		r.Timestamp, r.URL, r.Up, r.ResponseTime, r.StatusCode, r.ErrorMessage)
	if err != nil {
		return fmt.Errorf("appending probe result: %w", err)
	}
	return nil
}

func (s *Store) ByDate(ctx context.Context, url string, day time.Time) ([]domain.ProbeResult, error) {
	start, end := store.DayRange(day)
	rows, err := s.pool.Query(ctx,
		`SELECT ts, url, is_up, response_time, status_code, error_message
		   FROM uptime_checks
		  WHERE url = $1 AND ts >= $2 AND ts < $3
		  ORDER BY ts`,
		url, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying checks by date: %w", err)
	}
	defer rows.Close()

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

func (s *Store) Recent(ctx context.Context, url string, limit int) ([]domain.ProbeResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT ts, url, is_up, response_time, status_code, error_message
		   FROM uptime_checks
		  WHERE url = $1
		  ORDER BY ts DESC
		  LIMIT $2`,
		url, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent checks: %w", err)
	}
	defer rows.Close()

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

func (s *Store) Prune(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	tag, err := s.pool.Exec(ctx, `DELETE FROM uptime_checks WHERE ts < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning old checks: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

var _ store.ResultStore = (*Store)(nil)
