package counter

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const webhookOutcomesKey = "webhook:counters:outcomes"

// WebhookCounter keeps per-outcome webhook delivery counts in a Redis hash.
type WebhookCounter struct {
	client *redis.Client
	key    string
}

// NewWebhookCounter returns a counter on the given client.
func NewWebhookCounter(client *redis.Client) *WebhookCounter {
	return &WebhookCounter{client: client, key: webhookOutcomesKey}
}

// RecordWebhookOutcome increments the counter of outcome.
func (w *WebhookCounter) RecordWebhookOutcome(ctx context.Context, outcome string) error {
	return w.client.HIncrBy(ctx, w.key, outcome, 1).Err()
}

// Snapshot returns all outcome counts. Unparsable fields are skipped.
func (w *WebhookCounter) Snapshot(ctx context.Context) (map[string]int64, error) {
	data, err := w.client.HGetAll(ctx, w.key).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(data))
	for outcome, v := range data {
		n, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			continue
		}
		out[outcome] = n
	}
	return out, nil
}

// Reset drops all counts.
func (w *WebhookCounter) Reset(ctx context.Context) error {
	return w.client.Del(ctx, w.key).Err()
}
