package session

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// Redis keeps sessions in redis with the package TTL, so a restart of the
// application does not log everyone out.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Put(ctx context.Context, sessionID, username string) error {
	return r.client.Set(ctx, keyPrefix+sessionID, username, TTL).Err()
}

func (r *Redis) Get(ctx context.Context, sessionID string) (string, error) {
	username, err := r.client.Get(ctx, keyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return username, nil
}

func (r *Redis) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, keyPrefix+sessionID).Err()
}
