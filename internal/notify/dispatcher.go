package notify

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gocloud.dev/pubsub"

	"github.com/hamed0406/uptimemonitor/internal/config"
	"github.com/hamed0406/uptimemonitor/internal/tracker"
)

// Dispatcher applies the configured gating to alert intents and publishes
// the survivors onto the alert queue. Channel delivery happens in the
// worker, off the probe loop.
type Dispatcher struct {
	log   *zap.Logger
	cfg   config.AlertConfig
	topic *pubsub.Topic
}

func NewDispatcher(log *zap.Logger, cfg config.AlertConfig, topic *pubsub.Topic) *Dispatcher {
	return &Dispatcher{log: log, cfg: cfg, topic: topic}
}

// Dispatch gates and enqueues one intent. It never fails the calling
// probe path: publish errors are logged and swallowed.
func (d *Dispatcher) Dispatch(ctx context.Context, intent *tracker.Intent) {
	if intent == nil {
		return
	}
	if intent.Failure && !d.cfg.OnFailure {
		return
	}
	if !intent.Failure && !d.cfg.OnRecovery {
		return
	}
	// Sub-threshold failures are recorded but not alerted.
	if intent.Failure && intent.ConsecutiveFailures < d.cfg.FailureThreshold {
		return
	}

	msg := AlertMessage{
		URL:                 intent.URL,
		Failure:             intent.Failure,
		ConsecutiveFailures: intent.ConsecutiveFailures,
		Error:               intent.Error,
		OccurredAt:          intent.At,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		d.log.Error("alert_marshal_error", zap.Error(err))
		return
	}
	if err := d.topic.Send(ctx, &pubsub.Message{Body: body}); err != nil {
		d.log.Error("alert_enqueue_error", zap.Error(err))
		return
	}
	d.log.Debug("alert_enqueued",
		zap.Bool("failure", msg.Failure),
		zap.Int("consecutive_failures", msg.ConsecutiveFailures),
	)
}
