package models

import (
	"time"
)

// RewardType constants.
const (
	RewardTypePhysical   = "physical"
	RewardTypeDigital    = "digital"
	RewardTypeExperience = "experience"
)

// Reward is an item a fan can redeem points for.
type Reward struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Name        string    `gorm:"size:255;not null" json:"name" yaml:"name"`
	Description string    `gorm:"type:text" json:"description" yaml:"description"`
	PointsCost  int       `gorm:"not null" json:"points_cost" yaml:"points_cost"`
	ImageURL    string    `gorm:"type:text" json:"image_url,omitempty" yaml:"image_url"`
	Available   bool      `gorm:"not null" json:"available" yaml:"available"`
	Type        string    `gorm:"size:20" json:"type" yaml:"type"` // 'physical', 'digital', 'experience'
	CreatedAt   time.Time `json:"-" yaml:"-"`
	UpdatedAt   time.Time `json:"-" yaml:"-"`
}

// TableName specifies the table name for Reward model.
func (Reward) TableName() string {
	return "rewards"
}

// Contest is a prize draw gated by a minimum tier.
type Contest struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Name        string    `gorm:"size:255;not null" json:"name" yaml:"name"`
	Description string    `gorm:"type:text" json:"description" yaml:"description"`
	EndDate     time.Time `json:"end_date" yaml:"end_date"`
	MinLevel    Tier      `gorm:"size:20;not null" json:"min_level" yaml:"min_level"`
	Prize       string    `gorm:"type:text" json:"prize" yaml:"prize"`
	ImageURL    string    `gorm:"type:text" json:"image_url,omitempty" yaml:"image_url"`
	CreatedAt   time.Time `json:"-" yaml:"-"`
	UpdatedAt   time.Time `json:"-" yaml:"-"`
}

// TableName specifies the table name for Contest model.
func (Contest) TableName() string {
	return "contests"
}

// ContestEntry records a fan entering a contest.
type ContestEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FanID     uint      `gorm:"not null;index" json:"fan_id"`
	ContestID string    `gorm:"size:64;not null;index" json:"contest_id"`
	EnteredAt time.Time `gorm:"not null" json:"entered_at"`
}

// TableName specifies the table name for ContestEntry model.
func (ContestEntry) TableName() string {
	return "contest_entries"
}
