package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the connection settings for the redis-backed stores.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

const (
	contextKeyPrefix = "sahay:context:"
	pendingKeyPrefix = "sahay:pending:"
)

// RedisClient wraps one go-redis connection shared by both stores.
type RedisClient struct {
	rdb *redis.Client
}

// NewRedisClient connects to redis and validates the connection.
func NewRedisClient(cfg RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisClient{rdb: rdb}, nil
}

// Ping checks if redis is reachable.
func (c *RedisClient) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the underlying connection.
func (c *RedisClient) Close() error {
	return c.rdb.Close()
}

// RedisContextStore is the redis-backed ContextStore. TTL expiry is
// native: entries are written with EX and vanish on their own.
type RedisContextStore struct {
	client *RedisClient
	ttl    time.Duration
}

// NewRedisContextStore creates a context cache on the shared client.
func NewRedisContextStore(client *RedisClient, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{client: client, ttl: ttl}
}

// Put upserts the entry for its conversation key and resets the TTL.
func (s *RedisContextStore) Put(ctx context.Context, entry ContextEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal context entry: %w", err)
	}
	if err := s.client.rdb.Set(ctx, contextKeyPrefix+entry.ConversationKey, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("context put failed: %w", err)
	}
	return nil
}

// Get returns the non-expired entry for the key, or nil on a miss.
func (s *RedisContextStore) Get(ctx context.Context, key string) (*ContextEntry, error) {
	data, err := s.client.rdb.Get(ctx, contextKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("context get failed: %w", err)
	}
	var entry ContextEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal context entry: %w", err)
	}
	return &entry, nil
}

// RedisPendingStore is the redis-backed PendingStore. Consume uses
// GETDEL so the removal is atomic: two racing consumers cannot both
// receive the same pending action.
type RedisPendingStore struct {
	client *RedisClient
	ttl    time.Duration
}

// NewRedisPendingStore creates a pending-action store on the shared client.
func NewRedisPendingStore(client *RedisClient, ttl time.Duration) *RedisPendingStore {
	return &RedisPendingStore{client: client, ttl: ttl}
}

// Save upserts the pending action for the key and resets the TTL.
func (s *RedisPendingStore) Save(ctx context.Context, key, actionKind, originalMessage string) error {
	action := PendingAction{
		ConversationKey: key,
		ActionKind:      actionKind,
		OriginalMessage: originalMessage,
		CreatedAt:       time.Now(),
	}
	data, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("failed to marshal pending action: %w", err)
	}
	if err := s.client.rdb.Set(ctx, pendingKeyPrefix+key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("pending save failed: %w", err)
	}
	return nil
}

// Peek returns the non-expired pending action without removing it.
func (s *RedisPendingStore) Peek(ctx context.Context, key string) (*PendingAction, error) {
	data, err := s.client.rdb.Get(ctx, pendingKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pending peek failed: %w", err)
	}
	return unmarshalPending(data)
}

// Consume removes and returns the non-expired pending action.
func (s *RedisPendingStore) Consume(ctx context.Context, key string) (*PendingAction, error) {
	data, err := s.client.rdb.GetDel(ctx, pendingKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pending consume failed: %w", err)
	}
	return unmarshalPending(data)
}

func unmarshalPending(data []byte) (*PendingAction, error) {
	var action PendingAction
	if err := json.Unmarshal(data, &action); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending action: %w", err)
	}
	return &action, nil
}
