package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/aria-khodro/cargo-relay/internal/core/domain"
)

const (
	tokenKeyPrefix = "fcm"
	scanPageSize   = 100
)

// TokenStore resolves device tokens from keys of the form
// fcm:<scope>:<clientID>... via a cursor scan.
type TokenStore struct {
	rdb *redis.Client
}

func NewTokenStore(rdb *redis.Client) *TokenStore {
	return &TokenStore{rdb: rdb}
}

func (s *TokenStore) Tokens(ctx context.Context, scope domain.TenantScope, clientID string) ([]string, error) {
	pattern := fmt.Sprintf("%s:%s:%s*", tokenKeyPrefix, scope, clientID)

	var keys []string
	var cursor uint64
	for {
		page, next, err := s.rdb.Scan(ctx, cursor, pattern, scanPageSize).Result()
		if err != nil {
			return nil, fmt.Errorf("token scan: %w", err)
		}
		keys = append(keys, page...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("token fetch: %w", err)
	}
	tokens := make([]string, 0, len(values))
	for _, v := range values {
		// A key deleted between scan and fetch yields nil; skip it.
		if token, ok := v.(string); ok && token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens, nil
}
