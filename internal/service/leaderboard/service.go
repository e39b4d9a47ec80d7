// Package leaderboard provides fan rankings and tier distribution.
package leaderboard

import (
	"context"
	"fmt"

	"github.com/aimd54/fan-ledger/internal/cache"
	"github.com/aimd54/fan-ledger/internal/ledger"
	"github.com/aimd54/fan-ledger/internal/metrics"
	"github.com/aimd54/fan-ledger/internal/models"
	"github.com/aimd54/fan-ledger/internal/repository"
	"github.com/aimd54/fan-ledger/pkg/logger"
)

// DefaultLimit is the leaderboard size used when none is given.
const DefaultLimit = 10

// MaxLimit caps the leaderboard size.
const MaxLimit = 100

// FanRepository interface for ranking queries.
type FanRepository interface {
	ListByPoints(limit int) ([]models.FanProfile, error)
	CountByTier() (map[models.Tier]int64, error)
}

// BoardCache interface for cached leaderboards.
type BoardCache interface {
	GetLeaderboard(ctx context.Context, limit int, dst interface{}) (bool, error)
	SetLeaderboard(ctx context.Context, limit int, board interface{}) error
}

// Entry represents a single entry in a leaderboard.
type Entry struct {
	Rank        int         `json:"rank"`
	FanID       uint        `json:"fan_id"`
	Name        string      `json:"name"`
	Avatar      string      `json:"avatar,omitempty"`
	Tier        models.Tier `json:"tier"`
	FanScore    int         `json:"fan_score"`
	TotalPoints int         `json:"total_points"`
}

// Service handles leaderboard generation.
type Service struct {
	fanRepo FanRepository
	cache   BoardCache
	log     *logger.Logger
}

// NewService creates a new leaderboard service with concrete dependencies.
// snapshots may be nil.
func NewService(fanRepo *repository.FanRepository, snapshots *cache.Snapshots, log *logger.Logger) *Service {
	var bc BoardCache
	if snapshots != nil {
		bc = snapshots
	}
	return NewServiceWithInterfaces(fanRepo, bc, log)
}

// NewServiceWithInterfaces creates a new leaderboard service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(fanRepo FanRepository, boardCache BoardCache, log *logger.Logger) *Service {
	return &Service{
		fanRepo: fanRepo,
		cache:   boardCache,
		log:     log,
	}
}

// GetLeaderboard returns the top fans by total points. Ties are broken by
// fan id, and ranks are positions in that order.
func (s *Service) GetLeaderboard(ctx context.Context, limit int) ([]Entry, error) {
	limit = normalizeLimit(limit)

	if s.cache != nil {
		var cached []Entry
		ok, err := s.cache.GetLeaderboard(ctx, limit, &cached)
		if err != nil {
			s.log.Warn().Err(err).Int("limit", limit).Msg("Leaderboard cache read failed")
		}
		metrics.RecordCacheLookup("leaderboard", ok)
		if ok {
			return cached, nil
		}
	}

	profiles, err := s.fanRepo.ListByPoints(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get fans: %w", err)
	}

	entries := buildEntries(profiles)

	if s.cache != nil {
		if err := s.cache.SetLeaderboard(ctx, limit, entries); err != nil {
			s.log.Warn().Err(err).Int("limit", limit).Msg("Leaderboard cache write failed")
		}
	}

	s.log.Debug().Int("limit", limit).Int("entries", len(entries)).Msg("Built leaderboard")
	return entries, nil
}

func buildEntries(profiles []models.FanProfile) []Entry {
	entries := make([]Entry, 0, len(profiles))
	for i, p := range profiles {
		entries = append(entries, Entry{
			Rank:        i + 1,
			FanID:       p.ID,
			Name:        p.User.Name,
			Avatar:      p.User.Avatar,
			Tier:        p.FanTier,
			FanScore:    p.FanScore,
			TotalPoints: p.TotalPoints,
		})
	}
	return entries
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// TierCount is the number of fans in one tier.
type TierCount struct {
	Tier  models.Tier `json:"tier"`
	Count int64       `json:"count"`
}

// GetTierDistribution returns the fan count for every tier, lowest first.
//
//nolint:revive,unparam // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetTierDistribution(ctx context.Context) ([]TierCount, error) {
	counts, err := s.fanRepo.CountByTier()
	if err != nil {
		return nil, fmt.Errorf("failed to count tiers: %w", err)
	}

	tiers := ledger.Tiers()
	dist := make([]TierCount, 0, len(tiers))
	for _, t := range tiers {
		dist = append(dist, TierCount{Tier: t, Count: counts[t]})
	}
	return dist, nil
}

// RefreshTierGauge publishes the tier distribution to the fans-by-tier gauge.
func (s *Service) RefreshTierGauge(ctx context.Context) ([]TierCount, error) {
	dist, err := s.GetTierDistribution(ctx)
	if err != nil {
		return nil, err
	}
	for _, tc := range dist {
		metrics.SetFansByTier(string(tc.Tier), tc.Count)
	}
	return dist, nil
}
