package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/guregu/null/v5"
	"go.uber.org/zap"
	"gocloud.dev/pubsub"

	"github.com/hamed0406/uptimemonitor/internal/config"
	"github.com/hamed0406/uptimemonitor/internal/tracker"
)

var queueSeq int

func testQueue(t *testing.T) (*pubsub.Topic, *pubsub.Subscription) {
	t.Helper()
	queueSeq++
	url := fmt.Sprintf("mem://dispatch_test_%d", queueSeq)
	topic, sub, err := OpenQueue(context.Background(), url)
	if err != nil {
		t.Fatalf("open queue: %v", err)
	}
	t.Cleanup(func() {
		ctx := context.Background()
		_ = sub.Shutdown(ctx)
		_ = topic.Shutdown(ctx)
	})
	return topic, sub
}

func receiveAlert(t *testing.T, sub *pubsub.Subscription) *AlertMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	msg, err := sub.Receive(ctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	defer msg.Ack()
	var alert AlertMessage
	if err := json.Unmarshal(msg.Body, &alert); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return &alert
}

func assertEmpty(t *testing.T, sub *pubsub.Subscription) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if msg, err := sub.Receive(ctx); err == nil {
		msg.Ack()
		t.Fatalf("unexpected alert on queue: %s", msg.Body)
	}
}

func alertAllConfig() config.AlertConfig {
	return config.AlertConfig{OnFailure: true, OnRecovery: true, FailureThreshold: 1}
}

func failureIntent(count int, errMsg string) *tracker.Intent {
	i := &tracker.Intent{
		URL:                 "https://example.com",
		Failure:             true,
		ConsecutiveFailures: count,
		At:                  time.Now(),
	}
	if errMsg != "" {
		i.Error = null.StringFrom(errMsg)
	}
	return i
}

func TestDispatch_ThresholdGate(t *testing.T) {
	topic, sub := testQueue(t)
	d := NewDispatcher(zap.NewNop(), config.AlertConfig{
		OnFailure:        true,
		OnRecovery:       true,
		FailureThreshold: 2,
	}, topic)
	ctx := context.Background()

	// Below threshold: recorded but not alerted.
	d.Dispatch(ctx, failureIntent(1, "e1"))
	assertEmpty(t, sub)

	// At and above threshold: every failure alerts, not just the crossing.
	d.Dispatch(ctx, failureIntent(2, "e2"))
	got := receiveAlert(t, sub)
	if !got.Failure || got.ConsecutiveFailures != 2 || got.Error.String != "e2" {
		t.Fatalf("unexpected alert: %+v", got)
	}

	d.Dispatch(ctx, failureIntent(3, "e3"))
	got = receiveAlert(t, sub)
	if got.ConsecutiveFailures != 3 || got.Error.String != "e3" {
		t.Fatalf("unexpected alert: %+v", got)
	}
}

func TestDispatch_RecoveryBypassesThreshold(t *testing.T) {
	topic, sub := testQueue(t)
	d := NewDispatcher(zap.NewNop(), config.AlertConfig{
		OnFailure:        true,
		OnRecovery:       true,
		FailureThreshold: 5,
	}, topic)

	d.Dispatch(context.Background(), &tracker.Intent{URL: "https://example.com", At: time.Now()})
	got := receiveAlert(t, sub)
	if got.Failure {
		t.Fatalf("want recovery alert, got %+v", got)
	}
}

func TestDispatch_DisabledClassesAreDropped(t *testing.T) {
	topic, sub := testQueue(t)
	d := NewDispatcher(zap.NewNop(), config.AlertConfig{
		OnFailure:        false,
		OnRecovery:       false,
		FailureThreshold: 1,
	}, topic)
	ctx := context.Background()

	d.Dispatch(ctx, failureIntent(10, "down"))
	d.Dispatch(ctx, &tracker.Intent{URL: "https://example.com", At: time.Now()})
	d.Dispatch(ctx, nil)
	assertEmpty(t, sub)
}
