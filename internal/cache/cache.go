// Package cache provides the Redis-backed snapshot cache for fan profiles
// and leaderboards.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrMiss is returned by Get when the key does not exist.
var ErrMiss = errors.New("cache miss")

// Cache is a string key/value store with expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SetNX(ctx context.Context, key string, value string, expiration time.Duration) (bool, error)
	// DelIfEqual removes key only while it still holds value.
	DelIfEqual(ctx context.Context, key string, value string) (bool, error)
	Health(ctx context.Context) error
	Close() error
}

// ProfileKey returns the key of a fan profile snapshot.
func ProfileKey(fanID uint) string {
	return fmt.Sprintf("fan:profile:%d", fanID)
}

// LeaderboardKey returns the key of a leaderboard snapshot of the given size.
func LeaderboardKey(limit int) string {
	return fmt.Sprintf("leaderboard:%d", limit)
}

// LockKey returns the key of a named job lock.
func LockKey(name string) string {
	return "lock:" + name
}
