package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carrental/storefront/internal/core/ports"
)

const defaultTimeout = 5 * time.Second

var _ ports.Storage = (*Storage)(nil)

// Config describes the Redis session store.
type Config struct {
	Addr     string
	Password string
	DB       int
	// Namespace prefixes every key. Empty keeps keys bare.
	Namespace string
	// TTL bounds how long a stored session lives. Zero keeps keys until removed.
	TTL     time.Duration
	Timeout time.Duration
}

// Open connects, pings and returns the storage. The client is closed again
// when the ping fails.
func Open(ctx context.Context, cfg Config) (*Storage, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return NewStorage(client, cfg.Namespace, cfg.TTL), nil
}

// Storage keeps session keys in Redis.
// Key format: <namespace>:<key>
type Storage struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// NewStorage wraps the client. A zero ttl keeps keys until removed.
func NewStorage(client *redis.Client, namespace string, ttl time.Duration) *Storage {
	return &Storage{client: client, namespace: namespace, ttl: ttl}
}

func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

// Put writes every key inside MULTI/EXEC.
func (s *Storage) Put(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, s.key(k), v, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	return nil
}

func (s *Storage) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis remove: %w", err)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Storage) Close() error {
	return s.client.Close()
}

func (s *Storage) key(k string) string {
	if s.namespace == "" {
		return k
	}
	return s.namespace + ":" + k
}
