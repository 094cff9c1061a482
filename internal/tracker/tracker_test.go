package tracker

import (
	"testing"
	"time"

	"github.com/guregu/null/v5"

	"github.com/hamed0406/uptimemonitor/internal/domain"
)

func up() domain.ProbeResult {
	return domain.ProbeResult{
		Timestamp:    time.Now(),
		URL:          "https://example.com",
		Up:           true,
		ResponseTime: null.FloatFrom(0.1),
		StatusCode:   null.IntFrom(200),
	}
}

func down(msg string) domain.ProbeResult {
	r := domain.ProbeResult{
		Timestamp: time.Now(),
		URL:       "https://example.com",
	}
	if msg != "" {
		r.ErrorMessage = null.StringFrom(msg)
	} else {
		r.StatusCode = null.IntFrom(500)
		r.ResponseTime = null.FloatFrom(0.2)
	}
	return r
}

func TestObserve_SuccessAfterSuccessIsSilent(t *testing.T) {
	tr := New("https://example.com")
	if got := tr.Observe(up()); got != nil {
		t.Fatalf("first success should emit nothing, got %+v", got)
	}
	if got := tr.Observe(up()); got != nil {
		t.Fatalf("repeat success should emit nothing, got %+v", got)
	}
	s := tr.Snapshot()
	if s.ConsecutiveFailures != 0 || !s.LastStatus.Valid || !s.LastStatus.Bool {
		t.Fatalf("snapshot wrong: %+v", s)
	}
}

func TestObserve_EveryFailureEmitsWithCount(t *testing.T) {
	tr := New("https://example.com")
	for i := 1; i <= 3; i++ {
		got := tr.Observe(down("boom"))
		if got == nil || !got.Failure {
			t.Fatalf("failure %d: want failure intent, got %+v", i, got)
		}
		if got.ConsecutiveFailures != i {
			t.Fatalf("failure %d: count = %d", i, got.ConsecutiveFailures)
		}
		if got.Error.String != "boom" {
			t.Fatalf("failure %d: error = %+v", i, got.Error)
		}
	}
}

func TestObserve_RecoveryFiresOnceAtEdge(t *testing.T) {
	tr := New("https://example.com")
	tr.Observe(down("e1"))
	tr.Observe(down("e2"))

	got := tr.Observe(up())
	if got == nil || got.Failure {
		t.Fatalf("want recovery intent at edge, got %+v", got)
	}
	if s := tr.Snapshot(); s.ConsecutiveFailures != 0 {
		t.Fatalf("counter not reset: %+v", s)
	}

	if got := tr.Observe(up()); got != nil {
		t.Fatalf("success after success must not emit, got %+v", got)
	}
}

// Failure intents carry the per-probe error; a status failure has none.
func TestObserve_FailureStreakCarriesLatestError(t *testing.T) {
	tr := New("https://example.com")
	tr.Observe(down("e1"))
	got := tr.Observe(down("e2"))
	if got.ConsecutiveFailures != 2 || got.Error.String != "e2" {
		t.Fatalf("want count=2 error=e2, got %+v", got)
	}

	got = tr.Observe(down(""))
	if got.ConsecutiveFailures != 3 || got.Error.Valid {
		t.Fatalf("status failure counted with no error, got %+v", got)
	}
}
