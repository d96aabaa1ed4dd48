package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisKey = "bac-archiver:processed_sources"

// RedisStore keeps the ledger in a Redis set.
type RedisStore struct {
	client *redis.Client
	key    string
}

type RedisOption func(*RedisStore)

func WithRedisKey(key string) RedisOption {
	return func(s *RedisStore) {
		if key != "" {
			s.key = key
		}
	}
}

func NewRedisStore(addr string, opts ...RedisOption) *RedisStore {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return NewRedisStoreWithClient(rdb, opts...)
}

func NewRedisStoreWithClient(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, key: DefaultRedisKey}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) Load(ctx context.Context) ([]string, error) {
	urls, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers failure: %w", err)
	}
	sort.Strings(urls)
	return urls, nil
}

// Save replaces the set in one MULTI/EXEC transaction.
func (s *RedisStore) Save(ctx context.Context, urls []string) error {
	members := make([]interface{}, len(urls))
	for i, u := range urls {
		members[i] = u
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key)
	if len(members) > 0 {
		pipe.SAdd(ctx, s.key, members...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save failure: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
