package session

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
	Del(ctx context.Context, keys ...string) error
	CredentialKey(device string) string
}

// RedisStore keeps the credential as JSON under the device's key.
type RedisStore struct {
	client kv
	device string
	ttl    time.Duration
}

// NewRedisStore binds a store to one device.
func NewRedisStore(client kv, device string, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if device == "" {
		return nil, fmt.Errorf("device key required")
	}
	return &RedisStore{client: client, device: device, ttl: ttl}, nil
}

func (s *RedisStore) Load(ctx context.Context) (*Credential, error) {
	raw, err := s.client.Get(ctx, s.client.CredentialKey(s.device))
	if errors.Is(err, redis.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading credential: %w", err)
	}
	var cred Credential
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		return nil, fmt.Errorf("decoding credential: %w", err)
	}
	return &cred, nil
}

func (s *RedisStore) Save(ctx context.Context, cred Credential) error {
	payload, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encoding credential: %w", err)
	}
	return s.client.Set(ctx, s.client.CredentialKey(s.device), string(payload), s.ttl)
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.client.CredentialKey(s.device))
}
