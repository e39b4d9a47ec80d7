package leaderboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/aimd54/fan-ledger/internal/ledger"
	"github.com/aimd54/fan-ledger/internal/models"
)

// ErrFanNotRanked is returned when a fan does not appear in the rankings.
var ErrFanNotRanked = errors.New("fan not ranked")

// Standing describes where one fan sits among all fans.
type Standing struct {
	FanID       uint            `json:"fan_id"`
	Name        string          `json:"name"`
	Rank        int             `json:"rank"`
	TotalFans   int             `json:"total_fans"`
	Tier        models.Tier     `json:"tier"`
	TotalPoints int             `json:"total_points"`
	Progress    ledger.Progress `json:"progress"`
	// PointsBehind is the gap to the fan ranked directly above, 0 for the leader.
	PointsBehind int `json:"points_behind"`
}

// GetFanStanding returns the fan's global rank and tier progress.
//
//nolint:revive,unparam // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetFanStanding(ctx context.Context, fanID uint) (*Standing, error) {
	profiles, err := s.fanRepo.ListByPoints(0)
	if err != nil {
		return nil, fmt.Errorf("failed to get fans: %w", err)
	}

	for i, p := range profiles {
		if p.ID != fanID {
			continue
		}

		standing := &Standing{
			FanID:       p.ID,
			Name:        p.User.Name,
			Rank:        i + 1,
			TotalFans:   len(profiles),
			Tier:        p.FanTier,
			TotalPoints: p.TotalPoints,
			Progress:    ledger.ProgressFor(p.TotalPoints),
		}
		if i > 0 {
			standing.PointsBehind = profiles[i-1].TotalPoints - p.TotalPoints
		}
		return standing, nil
	}

	return nil, fmt.Errorf("%w: %d", ErrFanNotRanked, fanID)
}
