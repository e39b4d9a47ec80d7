package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aimd54/fan-ledger/internal/models"
)

// Snapshots stores JSON snapshots of profiles and leaderboards in a Cache.
type Snapshots struct {
	cache          Cache
	profileTTL     time.Duration
	leaderboardTTL time.Duration
}

// NewSnapshots creates a snapshot store.
func NewSnapshots(c Cache, profileTTL, leaderboardTTL time.Duration) *Snapshots {
	return &Snapshots{
		cache:          c,
		profileTTL:     profileTTL,
		leaderboardTTL: leaderboardTTL,
	}
}

// GetProfile returns the cached profile. The bool is false on a miss.
func (s *Snapshots) GetProfile(ctx context.Context, fanID uint) (*models.FanProfile, bool, error) {
	var profile models.FanProfile
	ok, err := s.get(ctx, ProfileKey(fanID), &profile)
	if !ok || err != nil {
		return nil, false, err
	}
	return &profile, true, nil
}

// SetProfile caches profile.
func (s *Snapshots) SetProfile(ctx context.Context, profile *models.FanProfile) error {
	return s.set(ctx, ProfileKey(profile.ID), profile, s.profileTTL)
}

// InvalidateProfile drops the cached profile.
func (s *Snapshots) InvalidateProfile(ctx context.Context, fanID uint) error {
	return s.cache.Del(ctx, ProfileKey(fanID))
}

// GetLeaderboard decodes the cached leaderboard of size limit into dst.
// It reports false on a miss.
func (s *Snapshots) GetLeaderboard(ctx context.Context, limit int, dst interface{}) (bool, error) {
	return s.get(ctx, LeaderboardKey(limit), dst)
}

// SetLeaderboard caches a leaderboard of size limit.
func (s *Snapshots) SetLeaderboard(ctx context.Context, limit int, board interface{}) error {
	return s.set(ctx, LeaderboardKey(limit), board, s.leaderboardTTL)
}

// TryLock acquires a named lock for ttl. It reports false if someone else holds it.
func (s *Snapshots) TryLock(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	return s.cache.SetNX(ctx, LockKey(name), owner, ttl)
}

// Unlock releases a named lock held by owner. A lock that expired and was
// taken by someone else is left alone; Unlock then reports false.
func (s *Snapshots) Unlock(ctx context.Context, name, owner string) (bool, error) {
	return s.cache.DelIfEqual(ctx, LockKey(name), owner)
}

func (s *Snapshots) get(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := s.cache.Get(ctx, key)
	if errors.Is(err, ErrMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		// a corrupt entry is treated as a miss and removed
		_ = s.cache.Del(ctx, key)
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Snapshots) set(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.cache.Set(ctx, key, string(raw), ttl)
}
