package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

const (
	usersKey   = "users"
	socketsKey = "sockets"
)

// PresenceStore maps connected users to their identity details and socket id.
type PresenceStore struct {
	rdb *redis.Client
}

func NewPresenceStore(rdb *redis.Client) *PresenceStore {
	return &PresenceStore{rdb: rdb}
}

func (p *PresenceStore) SetOnline(ctx context.Context, userID, socketID string, details json.RawMessage) error {
	if err := p.rdb.HSet(ctx, usersKey, userID, string(details)).Err(); err != nil {
		return err
	}
	return p.rdb.HSet(ctx, socketsKey, userID, socketID).Err()
}

func (p *PresenceStore) SetOffline(ctx context.Context, userID string) error {
	if err := p.rdb.HDel(ctx, usersKey, userID).Err(); err != nil {
		return err
	}
	return p.rdb.HDel(ctx, socketsKey, userID).Err()
}
