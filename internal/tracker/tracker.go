package tracker

import (
	"sync"
	"time"

	"github.com/guregu/null/v5"

	"github.com/hamed0406/uptimemonitor/internal/domain"
)

// Intent is the decision output of the tracker: an alert that has not yet
// been gated by configuration. Every failure produces one (carrying the
// new consecutive count); a recovery produces one only on the
// failure-to-success edge.
type Intent struct {
	URL                 string      `json:"url"`
	Failure             bool        `json:"failure"`
	ConsecutiveFailures int         `json:"consecutive_failures"`
	Error               null.String `json:"error"`
	At                  time.Time   `json:"at"`
}

// Snapshot is a read-only view of the tracker state for the status API.
type Snapshot struct {
	URL                 string    `json:"url"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastStatus          null.Bool `json:"last_status"`
}

// Tracker is the UP/DOWN state machine over consecutive probe outcomes.
// Observe is called from the probe loop only (single writer); the mutex
// exists so the HTTP API can read a snapshot concurrently.
type Tracker struct {
	mu                  sync.RWMutex
	url                 string
	consecutiveFailures int
	lastStatus          null.Bool
}

func New(url string) *Tracker {
	return &Tracker{url: url}
}

// Observe feeds one probe outcome through the state machine and returns
// the resulting alert intent, or nil when nothing should be offered to
// the notifier (a success following a success).
func (t *Tracker) Observe(res domain.ProbeResult) *Intent {
	t.mu.Lock()
	defer t.mu.Unlock()

	var intent *Intent
	if res.Up {
		if t.consecutiveFailures > 0 {
			intent = &Intent{
				URL: t.url,
				At:  res.Timestamp,
			}
		}
		t.consecutiveFailures = 0
	} else {
		t.consecutiveFailures++
		intent = &Intent{
			URL:                 t.url,
			Failure:             true,
			ConsecutiveFailures: t.consecutiveFailures,
			Error:               res.ErrorMessage,
			At:                  res.Timestamp,
		}
	}
	t.lastStatus = null.BoolFrom(res.Up)
	return intent
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Snapshot{
		URL:                 t.url,
		ConsecutiveFailures: t.consecutiveFailures,
		LastStatus:          t.lastStatus,
	}
}
