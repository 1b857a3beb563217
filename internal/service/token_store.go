package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenDenylist remembers revoked token ids until they expire
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisTokenDenylist stores revoked token ids as expiring Redis keys
type RedisTokenDenylist struct {
	client *redis.Client
	prefix string
}

func NewRedisTokenDenylist(client *redis.Client) *RedisTokenDenylist {
	return &RedisTokenDenylist{client: client, prefix: "auth:revoked"}
}

func (d *RedisTokenDenylist) key(tokenID string) string {
	return d.prefix + ":" + tokenID
}

func (d *RedisTokenDenylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, d.key(tokenID), 1, ttl).Err()
}

func (d *RedisTokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := d.client.Get(ctx, d.key(tokenID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
