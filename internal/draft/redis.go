package draft

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "support-console:draft:"

// Connect accepts either a redis:// URL or a host:port address.
func Connect(addr, password string, db int) (*redis.Client, error) {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}), nil
}

// RedisStore keeps drafts across console restarts. Slots expire after ttl.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, ticketID string) (string, error) {
	v, err := s.client.Get(ctx, keyPrefix+ticketID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("get draft %s: %w", ticketID, err)
	}
	return v, nil
}

func (s *RedisStore) Put(ctx context.Context, ticketID, text string) error {
	if text == "" {
		return s.Delete(ctx, ticketID)
	}
	if err := s.client.Set(ctx, keyPrefix+ticketID, text, s.ttl).Err(); err != nil {
		return fmt.Errorf("put draft %s: %w", ticketID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, ticketID string) error {
	if err := s.client.Del(ctx, keyPrefix+ticketID).Err(); err != nil {
		return fmt.Errorf("delete draft %s: %w", ticketID, err)
	}
	return nil
}

// Ping is used by the readiness probe.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
