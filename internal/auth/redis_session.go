package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSessionStore keeps sessions in Redis so they survive restarts and are
// shared between replicas.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
}

// NewRedisSessionStore builds a store writing keys under prefix.
func NewRedisSessionStore(client *redis.Client, prefix string) *RedisSessionStore {
	return &RedisSessionStore{client: client, prefix: prefix}
}

func (s *RedisSessionStore) key(sessionID string) string {
	return s.prefix + sessionID
}

// Put stores the identity under sessionID with the given expiry.
func (s *RedisSessionStore) Put(ctx context.Context, sessionID string, identity *Identity, ttl time.Duration) error {
	payload, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(sessionID), payload, ttl).Err()
}

// Get resolves the identity and recomputes its capabilities from the role.
func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*Identity, error) {
	payload, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	var identity Identity
	if err := json.Unmarshal(payload, &identity); err != nil {
		return nil, err
	}
	identity.Capabilities = CapabilitiesFor(identity.Role)
	return &identity, nil
}

// Delete removes the session.
func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}
