package notify

import (
	"fmt"
	"time"

	"github.com/guregu/null/v5"
)

// AlertMessage is the queue payload for one gated alert. It carries
// everything a channel needs so delivery does not depend on monitor
// state that may have moved on by the time the worker runs.
type AlertMessage struct {
	URL                 string      `json:"url"`
	Failure             bool        `json:"failure"`
	ConsecutiveFailures int         `json:"consecutive_failures"`
	Error               null.String `json:"error"`
	OccurredAt          time.Time   `json:"occurred_at"`
}

// Render produces the subject and body sent to every channel.
func (m AlertMessage) Render() (subject, body string) {
	ts := m.OccurredAt.Format("2006-01-02 15:04:05")
	if m.Failure {
		subject = fmt.Sprintf("🚨 SITE DOWN: %s", m.URL)
		body = fmt.Sprintf(
			"ALERT: Website is DOWN\n\nURL: %s\nStatus: DOWN\nConsecutive Failures: %d\nTimestamp: %s\n",
			m.URL, m.ConsecutiveFailures, ts)
		if m.Error.Valid {
			body += fmt.Sprintf("Error: %s\n", m.Error.String)
		}
		return subject, body
	}

	subject = fmt.Sprintf("✅ SITE RECOVERED: %s", m.URL)
	body = fmt.Sprintf(
		"RECOVERY: Website is back UP\n\nURL: %s\nStatus: UP\nTimestamp: %s\n\nThe site has recovered from previous failures.\n",
		m.URL, ts)
	return subject, body
}
