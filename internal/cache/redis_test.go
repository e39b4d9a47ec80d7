package cache

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/fan-ledger/internal/config"
	"github.com/aimd54/fan-ledger/internal/models"
	"github.com/aimd54/fan-ledger/pkg/logger"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()

	mr := miniredis.RunT(t)
	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return mr, c
}

func TestRedisCache_GetSetDel(t *testing.T) {
	ctx := context.Background()
	mr, c := setupRedis(t)

	_, err := c.Get(ctx, "k")
	assert.True(t, errors.Is(err, ErrMiss))

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
	assert.Equal(t, time.Minute, mr.TTL("k"))

	require.NoError(t, c.Del(ctx, "k"))
	assert.False(t, mr.Exists("k"))

	// no keys is a no-op
	require.NoError(t, c.Del(ctx))
}

func TestRedisCache_Expiry(t *testing.T) {
	ctx := context.Background()
	mr, c := setupRedis(t)

	require.NoError(t, c.Set(ctx, "k", "v", time.Second))
	mr.FastForward(2 * time.Second)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisCache_SetNX(t *testing.T) {
	ctx := context.Background()
	_, c := setupRedis(t)

	ok, err := c.SetNX(ctx, "lock", "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.SetNX(ctx, "lock", "b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_HealthAndConnect(t *testing.T) {
	ctx := context.Background()
	mr, c := setupRedis(t)
	assert.NoError(t, c.Health(ctx))

	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	rc, err := NewRedisCache(ctx, &config.RedisConfig{Host: mr.Host(), Port: port}, logger.Nop())
	require.NoError(t, err)
	defer rc.Close()
	assert.NoError(t, rc.Health(ctx))

	_, err = NewRedisCache(ctx, &config.RedisConfig{Host: "127.0.0.1", Port: 1}, logger.Nop())
	assert.Error(t, err)
}

func TestSnapshots_Profile(t *testing.T) {
	ctx := context.Background()
	mr, c := setupRedis(t)
	s := NewSnapshots(c, 5*time.Minute, time.Minute)

	_, ok, err := s.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	profile := &models.FanProfile{
		ID:          1,
		User:        models.User{Name: "Carlos Silva"},
		TotalPoints: 2150,
		FanScore:    21,
		FanTier:     models.TierGold,
		PointsHistory: []models.PointsTransaction{
			{ID: "t1", FanID: 1, Sequence: 1, Amount: 150, Source: models.SourceSocial, Description: "Shared"},
		},
	}
	require.NoError(t, s.SetProfile(ctx, profile))
	assert.Equal(t, 5*time.Minute, mr.TTL(ProfileKey(1)))

	got, ok, err := s.GetProfile(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Carlos Silva", got.User.Name)
	assert.Equal(t, 2150, got.TotalPoints)
	require.Len(t, got.PointsHistory, 1)
	assert.Equal(t, "t1", got.PointsHistory[0].ID)

	require.NoError(t, s.SetLeaderboard(ctx, 10, []int{1}))
	require.NoError(t, s.InvalidateProfile(ctx, 1))
	assert.False(t, mr.Exists(ProfileKey(1)))
	assert.True(t, mr.Exists(LeaderboardKey(10)))
}

func TestSnapshots_CorruptEntryIsDropped(t *testing.T) {
	ctx := context.Background()
	mr, c := setupRedis(t)
	s := NewSnapshots(c, time.Minute, time.Minute)

	require.NoError(t, mr.Set(ProfileKey(3), "{not json"))

	_, ok, err := s.GetProfile(ctx, 3)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(ProfileKey(3)))
}

func TestSnapshots_Leaderboard(t *testing.T) {
	ctx := context.Background()
	_, c := setupRedis(t)
	s := NewSnapshots(c, time.Minute, time.Minute)

	var board []string
	ok, err := s.GetLeaderboard(ctx, 5, &board)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetLeaderboard(ctx, 5, []string{"a", "b"}))
	ok, err = s.GetLeaderboard(ctx, 5, &board)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, board)
}

func TestSnapshots_Lock(t *testing.T) {
	ctx := context.Background()
	_, c := setupRedis(t)
	s := NewSnapshots(c, time.Minute, time.Minute)

	ok, err := s.TryLock(ctx, "tier-refresh", "node-a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.TryLock(ctx, "tier-refresh", "node-b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	released, err := s.Unlock(ctx, "tier-refresh", "node-a")
	require.NoError(t, err)
	assert.True(t, released)

	ok, err = s.TryLock(ctx, "tier-refresh", "node-b", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSnapshots_UnlockKeepsLockTakenOverByAnotherOwner(t *testing.T) {
	ctx := context.Background()
	mr, c := setupRedis(t)
	s := NewSnapshots(c, time.Minute, time.Minute)

	ok, err := s.TryLock(ctx, "tier-refresh", "node-a", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	// node-a overruns its TTL and node-b takes the lock
	mr.FastForward(2 * time.Second)
	ok, err = s.TryLock(ctx, "tier-refresh", "node-b", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	released, err := s.Unlock(ctx, "tier-refresh", "node-a")
	require.NoError(t, err)
	assert.False(t, released)

	owner, err := mr.Get(LockKey("tier-refresh"))
	require.NoError(t, err)
	assert.Equal(t, "node-b", owner)
}
