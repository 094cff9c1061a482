package domain

import (
	"time"

	"github.com/guregu/null/v5"
)

// ProbeResult is one row per probe attempt. Rows are immutable once
// appended; retention pruning is the only way they leave the store.
//
// Field presence rules:
//   - ResponseTime and StatusCode are set only when the transport completed.
//   - ErrorMessage is set only when the transport failed.
//   - Up is true iff the probe completed with status 200 exactly.
type ProbeResult struct {
	Timestamp    time.Time   `json:"timestamp"`
	URL          string      `json:"url"`
	Up           bool        `json:"is_up"`
	ResponseTime null.Float  `json:"response_time"` // seconds
	StatusCode   null.Int    `json:"status_code"`
	ErrorMessage null.String `json:"error_message"`
}
