package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// UpdateDeduper filters redelivered chat updates. The transport delivers
// at-least-once, so a crash between processing and acknowledgement replays
// the same update id; seeing it here means it was already handled.
type UpdateDeduper struct {
	client *redis.Client
}

// NewUpdateDeduper creates an UpdateDeduper wrapping the given Redis client.
func NewUpdateDeduper(client *redis.Client) *UpdateDeduper {
	return &UpdateDeduper{client: client}
}

// Seen atomically marks the update id and reports whether it had already been
// marked. SetNX keeps check-and-mark race free across replicas.
func (d *UpdateDeduper) Seen(ctx context.Context, updateID int64) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.key(updateID), "1", dedupTTL).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return !ok, nil
}

func (d *UpdateDeduper) key(updateID int64) string {
	return fmt.Sprintf("update:%d", updateID)
}
