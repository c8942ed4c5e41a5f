package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps records as JSON values with a sliding TTL. Conversations
// are short-lived by design, so expiry doubles as cleanup.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisStore creates a redis-backed record store.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "redis_store"),
	}
}

func redisKey(userID string) string { return "memory:" + userID }

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context, userID string) (*ConversationRecord, LoadSource, error) {
	val, err := s.client.Get(ctx, redisKey(userID)).Result()
	if err == redis.Nil {
		return NewRecord(userID), SourceDefaultNew, nil
	}
	if err != nil {
		return nil, SourceDefaultNew, fmt.Errorf("memory: redis get: %w", err)
	}

	var record ConversationRecord
	if err := json.Unmarshal([]byte(val), &record); err != nil || !record.Valid() {
		s.logger.Warn("corrupt record, using default", "user_id", userID, "error", err)
		return NewRecord(userID), SourceDefaultRecovered, nil
	}
	record.UserID = userID

	// Refresh TTL on read
	_ = s.client.Expire(ctx, redisKey(userID), s.ttl).Err()

	return &record, SourceStored, nil
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, record *ConversationRecord) error {
	b, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("memory: marshal record for %s: %w", record.UserID, err)
	}
	if err := s.client.Set(ctx, redisKey(record.UserID), string(b), s.ttl).Err(); err != nil {
		return fmt.Errorf("memory: redis set: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error { return s.client.Close() }
