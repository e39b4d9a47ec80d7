package models

import (
	"time"
)

// TransactionSource is the cause of a points change.
type TransactionSource string

// TransactionSource constants.
const (
	SourceSocial     TransactionSource = "social"
	SourceGame       TransactionSource = "game"
	SourcePurchase   TransactionSource = "purchase"
	SourceReward     TransactionSource = "reward"
	SourceEvent      TransactionSource = "event"
	SourceEngagement TransactionSource = "engagement"
	SourceProfile    TransactionSource = "profile"
)

// Valid reports whether s is a known source.
func (s TransactionSource) Valid() bool {
	switch s {
	case SourceSocial, SourceGame, SourcePurchase, SourceReward, SourceEvent, SourceEngagement, SourceProfile:
		return true
	}
	return false
}

// PointsTransaction is an immutable ledger entry.
type PointsTransaction struct {
	ID          string            `gorm:"primaryKey;size:36" json:"id" yaml:"id"`
	FanID       uint              `gorm:"not null;index" json:"fan_id" yaml:"-"`
	Sequence    int64             `gorm:"not null;index" json:"sequence" yaml:"-"` // per-fan, increasing
	Date        time.Time         `gorm:"not null" json:"date" yaml:"date"`
	Amount      int               `gorm:"not null" json:"amount" yaml:"amount"`
	Source      TransactionSource `gorm:"size:20;not null;index" json:"source" yaml:"source"`
	Description string            `gorm:"type:text" json:"description" yaml:"description"`
}

// TableName specifies the table name for PointsTransaction model.
func (PointsTransaction) TableName() string {
	return "points_transactions"
}
