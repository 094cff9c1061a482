package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gocloud.dev/pubsub"
)

const defaultSendTimeout = 10 * time.Second

// Worker drains the alert queue and delivers each alert to every
// configured channel independently. One channel failing does not stop
// the others, and nothing here ever reaches the probe loop.
type Worker struct {
	log         *zap.Logger
	sub         *pubsub.Subscription
	channels    []Notifier
	sendTimeout time.Duration
}

func NewWorker(log *zap.Logger, sub *pubsub.Subscription, channels []Notifier) *Worker {
	return &Worker{
		log:         log,
		sub:         sub,
		channels:    channels,
		sendTimeout: defaultSendTimeout,
	}
}

// Run blocks consuming the queue until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		msg, err := w.sub.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.log.Info("alert_worker_stopped")
				return nil
			}
			w.log.Error("alert_receive_error", zap.Error(err))
			time.Sleep(10 * time.Millisecond)
			continue
		}

		var alert AlertMessage
		if err := json.Unmarshal(msg.Body, &alert); err != nil {
			w.log.Error("alert_unmarshal_error", zap.Error(err))
			msg.Ack()
			continue
		}

		w.deliver(ctx, alert)
		msg.Ack()
	}
}

func (w *Worker) deliver(ctx context.Context, alert AlertMessage) {
	subject, body := alert.Render()

	var (
		mu       sync.Mutex
		combined error
		wg       sync.WaitGroup
	)
	for _, ch := range w.channels {
		wg.Add(1)
		go func(ch Notifier) {
			defer wg.Done()
			sendCtx, cancel := context.WithTimeout(ctx, w.sendTimeout)
			defer cancel()
			if err := ch.Send(sendCtx, subject, body); err != nil {
				w.log.Warn("alert_channel_error",
					zap.String("channel", ch.Name()),
					zap.Error(err),
				)
				mu.Lock()
				combined = multierr.Append(combined, err)
				mu.Unlock()
				return
			}
			w.log.Info("alert_sent", zap.String("channel", ch.Name()), zap.String("subject", subject))
		}(ch)
	}
	wg.Wait()

	if combined != nil {
		w.log.Debug("alert_delivery_incomplete", zap.Error(combined))
	}
}
