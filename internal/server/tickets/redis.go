package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/casauth/internal/common"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "cas:ticket:"

// RedisStorage keeps tickets in redis with native key expiry.
type RedisStorage struct {
	redis *redis.Client
}

func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{redis: client}
}

func (s *RedisStorage) key(id string) string {
	return redisKeyPrefix + id
}

func (s *RedisStorage) Put(ctx context.Context, id string, value []byte, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.key(id), value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStorage) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	return redisResult(data, err)
}

func (s *RedisStorage) Take(ctx context.Context, id string) ([]byte, error) {
	data, err := s.redis.GetDel(ctx, s.key(id)).Bytes()
	return redisResult(data, err)
}

func (s *RedisStorage) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	return nil
}

func redisResult(data []byte, err error) ([]byte, error) {
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	return data, nil
}
