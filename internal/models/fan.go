// Package models defines domain models for the fan engagement ledger.
package models

import (
	"time"
)

// Tier is a fan's loyalty rank.
type Tier string

// Tier constants, lowest first.
const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// Platform identifies a social network a fan can connect.
type Platform string

// Platform constants.
const (
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformTwitch    Platform = "twitch"
	PlatformYouTube   Platform = "youtube"
	PlatformDiscord   Platform = "discord"
)

// User holds the fan's account details shown on the profile page.
type User struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Email          string `json:"email" yaml:"email"`
	Avatar         string `json:"avatar,omitempty" yaml:"avatar"`
	JoinDate       string `json:"join_date" yaml:"join_date"`
	Location       string `json:"location,omitempty" yaml:"location"`
	FavoriteGame   string `json:"favorite_game,omitempty" yaml:"favorite_game"`
	FavoritePlayer string `json:"favorite_player,omitempty" yaml:"favorite_player"`
}

// SocialProfile is a fan's account on one social platform.
type SocialProfile struct {
	Platform       Platform `json:"platform" yaml:"platform"`
	Username       string   `json:"username" yaml:"username"`
	Connected      bool     `json:"connected" yaml:"connected"`
	Followers      *int     `json:"followers,omitempty" yaml:"followers"`
	EngagementRate *float64 `json:"engagement_rate,omitempty" yaml:"engagement_rate"`
}

// EngagementMetric records one engagement event shown on the dashboard.
type EngagementMetric struct {
	Type        string `json:"type" yaml:"type"` // 'event', 'content', 'purchase', 'social'
	Name        string `json:"name" yaml:"name"`
	Date        string `json:"date" yaml:"date"`
	Value       int    `json:"value" yaml:"value"`
	Description string `json:"description,omitempty" yaml:"description"`
}

// PlayerDetail is a player the fan follows.
type PlayerDetail struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Team       string `json:"team" yaml:"team"`
	Game       string `json:"game" yaml:"game"`
	Role       string `json:"role,omitempty" yaml:"role"`
	IsFavorite bool   `json:"is_favorite" yaml:"is_favorite"`
}

// TimeEngagement describes how active the fan is in a time slot.
type TimeEngagement struct {
	TimeSlot        string `json:"time_slot" yaml:"time_slot"`               // 'morning', 'afternoon', 'evening', 'night'
	EngagementLevel int    `json:"engagement_level" yaml:"engagement_level"` // 0-100
	Percentage      int    `json:"percentage" yaml:"percentage"`
}

// SocialUsageStats describes how the fan uses a platform.
type SocialUsageStats struct {
	Platform           Platform `json:"platform" yaml:"platform"`
	UsagePercentage    int      `json:"usage_percentage" yaml:"usage_percentage"`
	MostFrequentAction string   `json:"most_frequent_action" yaml:"most_frequent_action"`
}

// InterestCategory groups the fan's specific interests.
type InterestCategory struct {
	Category          string   `json:"category" yaml:"category"`             // 'events', 'products', 'news', 'games', 'players'
	InterestLevel     int      `json:"interest_level" yaml:"interest_level"` // 0-100
	SpecificInterests []string `json:"specific_interests" yaml:"specific_interests"`
}

// FanProfile is the root aggregate for one fan.
// TotalPoints, FanScore, FanTier and PointsHistory are owned by the ledger;
// every other field is display data.
type FanProfile struct {
	ID                      uint               `gorm:"primaryKey" json:"id" yaml:"id"`
	User                    User               `gorm:"column:user_info;serializer:json;type:jsonb" json:"user" yaml:"user"`
	SocialProfiles          []SocialProfile    `gorm:"serializer:json;type:jsonb" json:"social_profiles" yaml:"social_profiles"`
	EngagementMetrics       []EngagementMetric `gorm:"serializer:json;type:jsonb" json:"engagement_metrics" yaml:"engagement_metrics"`
	FanScore                int                `gorm:"not null;default:0" json:"fan_score" yaml:"fan_score"`
	FanTier                 Tier               `gorm:"size:20;not null;index" json:"fan_tier" yaml:"fan_tier"`
	Interests               []string           `gorm:"serializer:json;type:jsonb" json:"interests" yaml:"interests"`
	FavoriteTeams           []string           `gorm:"serializer:json;type:jsonb" json:"favorite_teams,omitempty" yaml:"favorite_teams"`
	FavoritePlayersDetails  []PlayerDetail     `gorm:"serializer:json;type:jsonb" json:"favorite_players_details,omitempty" yaml:"favorite_players_details"`
	ContentInteractionTimes []TimeEngagement   `gorm:"serializer:json;type:jsonb" json:"content_interaction_times,omitempty" yaml:"content_interaction_times"`
	MostUsedSocialMedia     []SocialUsageStats `gorm:"serializer:json;type:jsonb" json:"most_used_social_media,omitempty" yaml:"most_used_social_media"`
	InterestCategories      []InterestCategory `gorm:"serializer:json;type:jsonb" json:"interest_categories,omitempty" yaml:"interest_categories"`
	TotalPoints             int                `gorm:"not null;default:0;index" json:"total_points" yaml:"total_points"`
	CreatedAt               time.Time          `json:"created_at" yaml:"-"`
	UpdatedAt               time.Time          `json:"updated_at" yaml:"-"`

	// Relationships
	PointsHistory []PointsTransaction `gorm:"foreignKey:FanID" json:"points_history" yaml:"points_history"` // newest first

	// Catalogs attached for display, not stored on the profile row.
	Rewards           []Reward  `gorm:"-" json:"rewards,omitempty" yaml:"-"`
	AvailableContests []Contest `gorm:"-" json:"available_contests,omitempty" yaml:"-"`
}

// TableName specifies the table name for FanProfile model.
func (FanProfile) TableName() string {
	return "fan_profiles"
}

// SocialProfile returns a pointer to the profile entry for platform, or nil.
func (p *FanProfile) SocialProfile(platform Platform) *SocialProfile {
	for i := range p.SocialProfiles {
		if p.SocialProfiles[i].Platform == platform {
			return &p.SocialProfiles[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the ledger-owned state and the slices a
// profile edit can replace, so callers can mutate it without aliasing.
func (p *FanProfile) Clone() *FanProfile {
	c := *p
	c.SocialProfiles = append([]SocialProfile(nil), p.SocialProfiles...)
	c.EngagementMetrics = append([]EngagementMetric(nil), p.EngagementMetrics...)
	c.Interests = append([]string(nil), p.Interests...)
	c.FavoriteTeams = append([]string(nil), p.FavoriteTeams...)
	c.FavoritePlayersDetails = append([]PlayerDetail(nil), p.FavoritePlayersDetails...)
	c.ContentInteractionTimes = append([]TimeEngagement(nil), p.ContentInteractionTimes...)
	c.MostUsedSocialMedia = append([]SocialUsageStats(nil), p.MostUsedSocialMedia...)
	c.PointsHistory = append([]PointsTransaction(nil), p.PointsHistory...)
	c.Rewards = append([]Reward(nil), p.Rewards...)
	c.AvailableContests = append([]Contest(nil), p.AvailableContests...)
	if p.InterestCategories != nil {
		c.InterestCategories = make([]InterestCategory, len(p.InterestCategories))
		for i, ic := range p.InterestCategories {
			ic.SpecificInterests = append([]string(nil), ic.SpecificInterests...)
			c.InterestCategories[i] = ic
		}
	}
	return &c
}
