package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aimd54/fan-ledger/internal/models"
)

// Snapshot is the result of one ledger operation to be stored atomically.
type Snapshot struct {
	Profile *models.FanProfile
	// Transactions are the entries the operation appended.
	Transactions []models.PointsTransaction
	// Entry is set when the operation entered a contest.
	Entry *models.ContestEntry
}

// TierCount is the number of fans in a tier.
type TierCount struct {
	Tier  models.Tier `gorm:"column:fan_tier"`
	Count int64       `gorm:"column:count"`
}

// FanRepository handles fan profile database operations.
type FanRepository struct {
	db *DB
}

// NewFanRepository creates a new fan repository.
func NewFanRepository(db *DB) *FanRepository {
	return &FanRepository{db: db}
}

// Create stores a new profile together with its points history.
func (r *FanRepository) Create(profile *models.FanProfile) error {
	if err := r.db.Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create fan %d: %w", profile.ID, err)
	}
	return nil
}

// Exists reports whether a profile with id is stored.
func (r *FanRepository) Exists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.FanProfile{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check fan %d: %w", id, err)
	}
	return count > 0, nil
}

// GetByID retrieves a profile with its full points history, newest first.
func (r *FanRepository) GetByID(id uint) (*models.FanProfile, error) {
	var profile models.FanProfile
	err := r.db.
		Preload("PointsHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence DESC")
		}).
		First(&profile, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("fan %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get fan %d: %w", id, err)
	}
	return &profile, nil
}

// Save writes the profile row, the new transactions and the optional contest
// entry in one database transaction.
func (r *FanRepository) Save(s Snapshot) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(s.Profile).Error; err != nil {
			return fmt.Errorf("failed to save fan %d: %w", s.Profile.ID, err)
		}
		if len(s.Transactions) > 0 {
			if err := tx.Create(&s.Transactions).Error; err != nil {
				return fmt.Errorf("failed to append transactions for fan %d: %w", s.Profile.ID, err)
			}
		}
		if s.Entry != nil {
			if err := tx.Create(s.Entry).Error; err != nil {
				return fmt.Errorf("failed to record contest entry for fan %d: %w", s.Profile.ID, err)
			}
		}
		return nil
	})
	return err
}

// ListTransactions returns up to limit of the fan's most recent transactions.
// A limit of zero or less returns all of them.
func (r *FanRepository) ListTransactions(fanID uint, limit int) ([]models.PointsTransaction, error) {
	query := r.db.Where("fan_id = ?", fanID).Order("sequence DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var txns []models.PointsTransaction
	if err := query.Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions for fan %d: %w", fanID, err)
	}
	return txns, nil
}

// ListByPoints returns profiles ordered by total points, highest first, ties by id.
// Points history is not loaded.
func (r *FanRepository) ListByPoints(limit int) ([]models.FanProfile, error) {
	query := r.db.Model(&models.FanProfile{}).Order("total_points DESC").Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var profiles []models.FanProfile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to list fans by points: %w", err)
	}
	return profiles, nil
}

// CountByTier returns the number of fans per tier. Tiers with no fans are absent.
func (r *FanRepository) CountByTier() (map[models.Tier]int64, error) {
	var rows []TierCount
	err := r.db.Model(&models.FanProfile{}).
		Select("fan_tier, COUNT(*) as count").
		Group("fan_tier").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count fans by tier: %w", err)
	}

	counts := make(map[models.Tier]int64, len(rows))
	for _, row := range rows {
		counts[row.Tier] = row.Count
	}
	return counts, nil
}
