package seed

import (
	"fmt"

	"github.com/aimd54/fan-ledger/internal/models"
	"github.com/aimd54/fan-ledger/pkg/logger"
)

// FanStore interface for creating the seed fan.
type FanStore interface {
	Exists(id uint) (bool, error)
	Create(profile *models.FanProfile) error
}

// RewardStore interface for the reward catalog.
type RewardStore interface {
	Upsert(reward *models.Reward) error
}

// ContestStore interface for the contest catalog.
type ContestStore interface {
	Upsert(contest *models.Contest) error
}

// Summary reports what Apply wrote.
type Summary struct {
	FanCreated bool
	Rewards    int
	Contests   int
}

// Apply writes the catalogs and creates the seed fan unless it already
// exists. An existing fan is never overwritten, so the command can be rerun.
func Apply(d *Data, fans FanStore, rewards RewardStore, contests ContestStore, log *logger.Logger) (*Summary, error) {
	sum := &Summary{}

	for i := range d.Rewards {
		if err := rewards.Upsert(&d.Rewards[i]); err != nil {
			return nil, fmt.Errorf("failed to seed reward %s: %w", d.Rewards[i].ID, err)
		}
		sum.Rewards++
	}

	for i := range d.Contests {
		if err := contests.Upsert(&d.Contests[i]); err != nil {
			return nil, fmt.Errorf("failed to seed contest %s: %w", d.Contests[i].ID, err)
		}
		sum.Contests++
	}

	exists, err := fans.Exists(d.Fan.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check fan %d: %w", d.Fan.ID, err)
	}
	if exists {
		log.Info().Uint("fan_id", d.Fan.ID).Msg("Seed fan already exists, leaving it untouched")
	} else {
		fan := d.Fan.Clone()
		if err := fans.Create(fan); err != nil {
			return nil, fmt.Errorf("failed to seed fan %d: %w", d.Fan.ID, err)
		}
		sum.FanCreated = true
	}

	log.Info().
		Bool("fan_created", sum.FanCreated).
		Int("rewards", sum.Rewards).
		Int("contests", sum.Contests).
		Msg("Seed data applied")

	return sum, nil
}
