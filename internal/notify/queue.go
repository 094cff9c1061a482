package notify

import (
	"context"
	"fmt"

	"gocloud.dev/pubsub"
	_ "gocloud.dev/pubsub/mempubsub"
)

// OpenQueue opens the alert topic and its subscription from one URL
// (default mem://alerts; an external broker URL works the same way when
// its driver is linked in).
func OpenQueue(ctx context.Context, rawURL string) (*pubsub.Topic, *pubsub.Subscription, error) {
	topic, err := pubsub.OpenTopic(ctx, rawURL)
	if err != nil {
		return nil, nil, fmt.Errorf("opening alert topic %q: %w", rawURL, err)
	}
	sub, err := pubsub.OpenSubscription(ctx, rawURL)
	if err != nil {
		_ = topic.Shutdown(ctx)
		return nil, nil, fmt.Errorf("opening alert subscription %q: %w", rawURL, err)
	}
	return topic, sub, nil
}
