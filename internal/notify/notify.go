package notify

import (
	"context"

	"github.com/hamed0406/uptimemonitor/internal/config"
)

// Notifier is one notification transport. Implementations must be safe
// for concurrent use; a send failure is the channel's own problem and is
// only ever logged by the caller.
type Notifier interface {
	Name() string
	Send(ctx context.Context, subject, body string) error
}

// Channels resolves the configured transports once at startup.
func Channels(cfg config.AlertConfig) []Notifier {
	var out []Notifier
	if e := NewEmail(cfg); e != nil {
		out = append(out, e)
	}
	if s := NewSlack(cfg.SlackWebhookURL); s != nil {
		out = append(out, s)
	}
	return out
}
