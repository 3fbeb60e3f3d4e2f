package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// Publisher republishes payloads on store channels and appends coordinate
// fixes to the per-transport history list.
type Publisher struct {
	rdb       *redis.Client
	keyPrefix string
}

func NewPublisher(rdb *redis.Client, keyPrefix string) *Publisher {
	return &Publisher{rdb: rdb, keyPrefix: keyPrefix}
}

func (p *Publisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return p.rdb.Publish(ctx, p.keyPrefix+channel, payload).Err()
}

func (p *Publisher) AppendCoords(ctx context.Context, transportID string, coords json.RawMessage) error {
	return p.rdb.RPush(ctx, "coords:"+transportID, string(coords)).Err()
}
