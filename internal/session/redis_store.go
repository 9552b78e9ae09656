package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/service-panel/servicepanel/internal/models"
)

// redisKeyPrefix namespaces session keys in Redis.
const redisKeyPrefix = "servicepanel:session:"

// RedisStore keeps sessions in Redis with a native TTL, for deployments
// that prefer session state outside the relational store.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a RedisStore and verifies connectivity.
func NewRedisStore(addr, password string, dbNum int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       dbNum,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if errPing := client.Ping(ctx).Err(); errPing != nil {
		return nil, fmt.Errorf("session: redis ping: %w", errPing)
	}
	return &RedisStore{client: client}, nil
}

// Create persists a new session with a TTL matching its expiry.
func (s *RedisStore) Create(ctx context.Context, sess *models.Session) error {
	payload, errMarshal := json.Marshal(sess)
	if errMarshal != nil {
		return fmt.Errorf("session: marshal: %w", errMarshal)
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session: already expired")
	}
	return s.client.Set(ctx, redisKeyPrefix+sess.ID, payload, ttl).Err()
}

// Get returns a live session by ID. Redis expiry handles reaping.
func (s *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	payload, errGet := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errGet != nil {
		if errors.Is(errGet, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, errGet
	}
	var sess models.Session
	if errUnmarshal := json.Unmarshal(payload, &sess); errUnmarshal != nil {
		return nil, fmt.Errorf("session: unmarshal: %w", errUnmarshal)
	}
	return &sess, nil
}

// Delete removes a session key. Missing keys are ignored.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, redisKeyPrefix+id).Err()
}
