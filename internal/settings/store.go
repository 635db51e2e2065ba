package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// settingsKey is the fixed key the serialized ReminderSettings blob lives under
const settingsKey = "reminder:settings"

// ErrNotFound is returned when no settings blob has been stored yet
var ErrNotFound = errors.New("settings not found")

// Store persists the serialized reminder settings blob. The caller owns
// (de)serialization; the store only moves bytes.
type Store interface {
	Get(ctx context.Context) ([]byte, error)
	Put(ctx context.Context, blob []byte) error
}

type redisStore struct {
	client *redis.Client
}

// NewRedisStore returns a Store backed by the given redis client
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Get(ctx context.Context) ([]byte, error) {
	blob, err := s.client.Get(ctx, settingsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	return blob, nil
}

func (s *redisStore) Put(ctx context.Context, blob []byte) error {
	if err := s.client.Set(ctx, settingsKey, blob, 0).Err(); err != nil {
		return fmt.Errorf("persist settings: %w", err)
	}
	return nil
}

// Connect initializes and verifies a redis client from a URL
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
