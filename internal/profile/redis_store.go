package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alkarmah/storefront/pkg/redis"
)

type kv interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	ProfileKey(device string) string
}

// RedisStore keeps the profile as JSON under the device's key, without expiry.
type RedisStore struct {
	client kv
	device string
}

func NewRedisStore(client kv, device string) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if device == "" {
		return nil, fmt.Errorf("device key required")
	}
	return &RedisStore{client: client, device: device}, nil
}

func (s *RedisStore) Load(ctx context.Context) (*Profile, error) {
	raw, err := s.client.Get(ctx, s.client.ProfileKey(s.device))
	if errors.Is(err, redis.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	return &p, nil
}

func (s *RedisStore) Save(ctx context.Context, p Profile) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	return s.client.Set(ctx, s.client.ProfileKey(s.device), string(payload), 0)
}
