// Package snapshot keeps the autosaved test session in Redis.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/adaptedmind/pkg/models"
)

// DefaultKey identifies the single in-progress test of this device
const DefaultKey = "adaptedmind:test-session"

// Config holds the Redis connection settings
type Config struct {
	Address  string
	Password string
	DB       int
	Key      string        // defaults to DefaultKey
	TTL      time.Duration // 0 keeps snapshots until cleared
}

// RedisStore stores the snapshot as a JSON string under one key
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore connects to Redis and checks the connection
func NewRedisStore(ctx context.Context, cfg Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Address, err)
	}
	return NewRedisStoreWithClient(client, cfg.Key, cfg.TTL), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, key string, ttl time.Duration) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{client: client, key: key, ttl: ttl}
}

// Save overwrites the stored snapshot
func (s *RedisStore) Save(ctx context.Context, snapshot models.SessionSnapshot) error {
	val, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("error encoding snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, val, s.ttl).Err(); err != nil {
		return fmt.Errorf("error saving snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or nil when there is none
func (s *RedisStore) Load(ctx context.Context) (*models.SessionSnapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading snapshot: %w", err)
	}

	var snapshot models.SessionSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("error decoding snapshot: %w", err)
	}
	return &snapshot, nil
}

// Clear removes the stored snapshot
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("error deleting key %s: %w", s.key, err)
	}
	return nil
}

// Close closes the underlying client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
