package ledger

import (
	"fmt"

	"github.com/aimd54/fan-ledger/internal/models"
)

// Tier thresholds on total accumulated points.
const (
	SilverThreshold   = 500
	GoldThreshold     = 2000
	PlatinumThreshold = 5000

	// MaxScore caps the fan score.
	MaxScore = 100
)

// tierOrder lists tiers lowest first; rank is index+1.
var tierOrder = []models.Tier{
	models.TierBronze,
	models.TierSilver,
	models.TierGold,
	models.TierPlatinum,
}

// TierFor returns the tier earned by a points total.
func TierFor(points int) models.Tier {
	switch {
	case points >= PlatinumThreshold:
		return models.TierPlatinum
	case points >= GoldThreshold:
		return models.TierGold
	case points >= SilverThreshold:
		return models.TierSilver
	default:
		return models.TierBronze
	}
}

// ScoreFor returns the 0-100 fan score for a points total.
func ScoreFor(points int) int {
	if points <= 0 {
		return 0
	}
	score := points / 100
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// Rank returns the position of tier in the order bronze < silver < gold < platinum,
// starting at 1.
func Rank(tier models.Tier) (int, error) {
	for i, t := range tierOrder {
		if t == tier {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
}

// ParseTier validates a tier name.
func ParseTier(s string) (models.Tier, error) {
	t := models.Tier(s)
	if _, err := Rank(t); err != nil {
		return "", err
	}
	return t, nil
}

// Tiers returns all tiers, lowest first.
func Tiers() []models.Tier {
	return append([]models.Tier(nil), tierOrder...)
}

// floorFor returns the minimum points total of tier.
func floorFor(tier models.Tier) int {
	switch tier {
	case models.TierSilver:
		return SilverThreshold
	case models.TierGold:
		return GoldThreshold
	case models.TierPlatinum:
		return PlatinumThreshold
	default:
		return 0
	}
}

// Progress describes how far a fan is from the next tier.
type Progress struct {
	Tier         models.Tier `json:"tier"`
	NextTier     models.Tier `json:"next_tier,omitempty"`
	Floor        int         `json:"floor"`
	Ceiling      int         `json:"ceiling,omitempty"` // zero at the top tier
	TotalPoints  int         `json:"total_points"`
	PointsToNext int         `json:"points_to_next"`
	Percent      float64     `json:"percent"`
}

// ProgressFor computes tier progress for a points total.
func ProgressFor(points int) Progress {
	tier := TierFor(points)
	p := Progress{
		Tier:        tier,
		Floor:       floorFor(tier),
		TotalPoints: points,
	}

	rank, _ := Rank(tier)
	if rank == len(tierOrder) {
		p.Percent = 100
		return p
	}

	p.NextTier = tierOrder[rank]
	p.Ceiling = floorFor(p.NextTier)
	p.PointsToNext = p.Ceiling - points

	span := p.Ceiling - p.Floor
	done := points - p.Floor
	if done < 0 {
		done = 0
	}
	p.Percent = float64(done) / float64(span) * 100
	return p
}
