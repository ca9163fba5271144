package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// StoredResponse is a create response kept for Idempotency-Key replay
type StoredResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client and checks the connection
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// SaveResponse stores a response under key unless one is already stored.
// It reports whether this call stored it.
func (c *Client) SaveResponse(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) (bool, error) {
	payload, err := json.Marshal(resp)
	if err != nil {
		return false, fmt.Errorf("failed to marshal response: %w", err)
	}
	return c.rdb.SetNX(ctx, idempotencyKey(key), payload, ttl).Result()
}

// LoadResponse returns the response stored under key, if any
func (c *Client) LoadResponse(ctx context.Context, key string) (*StoredResponse, bool, error) {
	val, err := c.rdb.Get(ctx, idempotencyKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var resp StoredResponse
	if err := json.Unmarshal(val, &resp); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal stored response: %w", err)
	}
	return &resp, true, nil
}

// AcquireLock reserves key for an in-flight request. It reports false
// when another request already holds it.
func (c *Client) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, lockKey(key), "1", ttl).Result()
}

// ReleaseLock frees a key reserved by AcquireLock
func (c *Client) ReleaseLock(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, lockKey(key)).Err()
}

func lockKey(key string) string {
	return fmt.Sprintf("lock:%s", idempotencyKey(key))
}

func idempotencyKey(key string) string {
	return fmt.Sprintf("idempotency:%s", key)
}
