package store

import (
	"context"
	"time"

	"github.com/hamed0406/uptimemonitor/internal/domain"
)

// ResultStore is the durable log of probe outcomes. Append must be safe
// under concurrent invocation; initialization is idempotent.
type ResultStore interface {
	// Append writes one immutable probe row.
	Append(ctx context.Context, r *domain.ProbeResult) error
	// ByDate returns the rows for url on the given local calendar day,
	// ordered by timestamp ascending.
	ByDate(ctx context.Context, url string, day time.Time) ([]domain.ProbeResult, error)
	// Recent returns up to limit rows for url, most recent first.
	Recent(ctx context.Context, url string, limit int) ([]domain.ProbeResult, error)
	// Prune deletes rows strictly older than now minus olderThanDays and
	// returns the number deleted. No eligible rows is a zero-count no-op.
	Prune(ctx context.Context, olderThanDays int) (int64, error)
	Close() error
}

// DayRange returns the half-open [start, end) interval covering the local
// calendar day that contains t.
func DayRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
