// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/trend-off/models"
)

// Leaderboard caches the winners list keyed by requested size.
type Leaderboard interface {
	Get(ctx context.Context, limit int) ([]models.Submission, bool, error)
	Set(ctx context.Context, limit int, items []models.Submission) error
	Invalidate(ctx context.Context) error
}

const (
	leaderboardKey = "trendoff:winners"
	DefaultTTL     = 30 * time.Second
)

type RedisLeaderboard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLeaderboard(client *redis.Client, ttl time.Duration) *RedisLeaderboard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLeaderboard{client: client, ttl: ttl}
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func (l *RedisLeaderboard) Get(ctx context.Context, limit int) ([]models.Submission, bool, error) {
	data, err := l.client.HGet(ctx, leaderboardKey, strconv.Itoa(limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read leaderboard cache: %w", err)
	}

	var items []models.Submission
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false, fmt.Errorf("failed to decode leaderboard cache: %w", err)
	}
	return items, true, nil
}

func (l *RedisLeaderboard) Set(ctx context.Context, limit int, items []models.Submission) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode leaderboard: %w", err)
	}

	pipe := l.client.TxPipeline()
	pipe.HSet(ctx, leaderboardKey, strconv.Itoa(limit), data)
	// NX: later writes must not extend the life of entries already cached.
	pipe.ExpireNX(ctx, leaderboardKey, l.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write leaderboard cache: %w", err)
	}
	return nil
}

func (l *RedisLeaderboard) Invalidate(ctx context.Context) error {
	if err := l.client.Del(ctx, leaderboardKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate leaderboard cache: %w", err)
	}
	return nil
}

// Noop is used when no Redis is configured; every read misses.
type Noop struct{}

func (Noop) Get(context.Context, int) ([]models.Submission, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, int, []models.Submission) error        { return nil }
func (Noop) Invalidate(context.Context) error                           { return nil }
