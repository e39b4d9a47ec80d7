package repository

import (
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/aimd54/fan-ledger/internal/models"
)

// RewardRepository handles reward catalog database operations.
type RewardRepository struct {
	db *DB
}

// NewRewardRepository creates a new reward repository.
func NewRewardRepository(db *DB) *RewardRepository {
	return &RewardRepository{db: db}
}

// List returns the whole catalog, most expensive first.
func (r *RewardRepository) List() ([]models.Reward, error) {
	var rewards []models.Reward
	if err := r.db.Order("points_cost DESC").Order("id ASC").Find(&rewards).Error; err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}
	return rewards, nil
}

// Upsert creates the reward or replaces the stored one with the same ID.
func (r *RewardRepository) Upsert(reward *models.Reward) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(reward).Error
	if err != nil {
		return fmt.Errorf("failed to upsert reward %s: %w", reward.ID, err)
	}
	return nil
}

// ContestRepository handles contest catalog and entry database operations.
type ContestRepository struct {
	db *DB
}

// NewContestRepository creates a new contest repository.
func NewContestRepository(db *DB) *ContestRepository {
	return &ContestRepository{db: db}
}

// List returns all contests, closing soonest first.
func (r *ContestRepository) List() ([]models.Contest, error) {
	var contests []models.Contest
	if err := r.db.Order("end_date ASC").Order("id ASC").Find(&contests).Error; err != nil {
		return nil, fmt.Errorf("failed to list contests: %w", err)
	}
	return contests, nil
}

// Upsert creates the contest or replaces the stored one with the same ID.
func (r *ContestRepository) Upsert(contest *models.Contest) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(contest).Error
	if err != nil {
		return fmt.Errorf("failed to upsert contest %s: %w", contest.ID, err)
	}
	return nil
}

// ListEntries returns the fan's contest entries, newest first.
func (r *ContestRepository) ListEntries(fanID uint) ([]models.ContestEntry, error) {
	var entries []models.ContestEntry
	err := r.db.
		Where("fan_id = ?", fanID).
		Order("entered_at DESC").
		Order("id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contest entries for fan %d: %w", fanID, err)
	}
	return entries, nil
}
