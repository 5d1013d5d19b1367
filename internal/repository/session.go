package repo

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const sessionKeyPrefix = "session:"

type RedisSessionStorage struct {
	client *redis.Client
	log    *zap.SugaredLogger
}

func NewSessionRedisStorage(redis *redis.Client, log *zap.SugaredLogger) *RedisSessionStorage {
	c := &RedisSessionStorage{
		client: redis,
		log:    log,
	}
	return c
}

func (r RedisSessionStorage) GetRecordKeyBySession(ctx context.Context, sessionID string) (recordKey string, ok bool) {
	v, err := r.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false
		}
		r.log.Error(err.Error())
		return "", false
	}
	return v, true
}

func (r RedisSessionStorage) StoreSession(ctx context.Context, sessionID string, recordKey string, ttl time.Duration) error {
	return r.client.Set(ctx, sessionKeyPrefix+sessionID, recordKey, ttl).Err()
}

func (r RedisSessionStorage) DeleteSession(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}
