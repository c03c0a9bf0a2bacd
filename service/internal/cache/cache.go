// Package cache keeps session records in Redis so a restarted or second
// instance can pick up a player's game.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/klondike/engine"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when no record exists for the session.
var ErrMiss = errors.New("cache miss")

const keyPrefix = "klondike:session:"

// Record is everything needed to rebuild a session's game.
type Record struct {
	SaveID    uuid.UUID       `json:"save_id"`
	Player    string          `json:"player,omitempty"`
	Seed      int64           `json:"seed"`
	DrawCount int             `json:"draw_count"`
	State     engine.Snapshot `json:"state"`
	Persisted bool            `json:"persisted"`
}

// Cache stores session records.
type Cache interface {
	Put(ctx context.Context, sid string, rec Record) error
	Get(ctx context.Context, sid string) (Record, error)
	Delete(ctx context.Context, sid string) error
}

// Key returns the Redis key of a session.
func Key(sid string) string { return keyPrefix + sid }

// RedisCache implements Cache on go-redis with a fixed TTL per record.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache parses url (redis://...) and verifies the server answers.
func NewRedisCache(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

// Put writes rec and refreshes its TTL.
func (c *RedisCache) Put(ctx context.Context, sid string, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, Key(sid), b, c.ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, sid string) (Record, error) {
	b, err := c.client.Get(ctx, Key(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrMiss
	}
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return Record{}, fmt.Errorf("decode session %s: %w", sid, err)
	}
	return rec, nil
}

func (c *RedisCache) Delete(ctx context.Context, sid string) error {
	return c.client.Del(ctx, Key(sid)).Err()
}

// Close releases the client's connections.
func (c *RedisCache) Close() error { return c.client.Close() }
