package ledger

import (
	"fmt"

	"github.com/aimd54/fan-ledger/internal/models"
)

// ProfileAction names a preference edit made from the profile page.
type ProfileAction string

// ProfileAction constants.
const (
	ActionAddTeam              ProfileAction = "add_team"
	ActionRemoveTeam           ProfileAction = "remove_team"
	ActionAddPlayer            ProfileAction = "add_player"
	ActionRemovePlayer         ProfileAction = "remove_player"
	ActionSetFavoritePlayer    ProfileAction = "set_favorite_player"
	ActionAddInterest          ProfileAction = "add_interest"
	ActionRemoveInterest       ProfileAction = "remove_interest"
	ActionSetInterestLevel     ProfileAction = "set_interest_level"
	ActionSetSocialPreferences ProfileAction = "set_social_preferences"
)

// awardPolicy says which edits earn profile points. Only additions do.
var awardPolicy = map[ProfileAction]bool{
	ActionAddTeam:              true,
	ActionRemoveTeam:           false,
	ActionAddPlayer:            true,
	ActionRemovePlayer:         false,
	ActionSetFavoritePlayer:    false,
	ActionAddInterest:          true,
	ActionRemoveInterest:       false,
	ActionSetInterestLevel:     false,
	ActionSetSocialPreferences: false,
}

// AwardsPoints reports whether action earns profile points.
func AwardsPoints(action ProfileAction) (bool, error) {
	award, ok := awardPolicy[action]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return award, nil
}

// ProfilePatch carries replacement values for display fields. Nil fields
// are left unchanged.
type ProfilePatch struct {
	Interests               *[]string                  `json:"interests,omitempty"`
	FavoriteTeams           *[]string                  `json:"favorite_teams,omitempty"`
	FavoritePlayersDetails  *[]models.PlayerDetail     `json:"favorite_players_details,omitempty"`
	InterestCategories      *[]models.InterestCategory `json:"interest_categories,omitempty"`
	MostUsedSocialMedia     *[]models.SocialUsageStats `json:"most_used_social_media,omitempty"`
	ContentInteractionTimes *[]models.TimeEngagement   `json:"content_interaction_times,omitempty"`
}

// UpdateProfile applies patch and, when awardPoints is set, credits the
// profile update award.
func (l *Ledger) UpdateProfile(patch ProfilePatch, awardPoints bool) (*Result, error) {
	if awardPoints && l.rules.ProfileUpdatePoints > 0 {
		if err := l.checkCredit(l.rules.ProfileUpdatePoints); err != nil {
			return nil, err
		}
	}

	p := l.profile
	if patch.Interests != nil {
		p.Interests = append([]string(nil), (*patch.Interests)...)
	}
	if patch.FavoriteTeams != nil {
		p.FavoriteTeams = append([]string(nil), (*patch.FavoriteTeams)...)
	}
	if patch.FavoritePlayersDetails != nil {
		p.FavoritePlayersDetails = append([]models.PlayerDetail(nil), (*patch.FavoritePlayersDetails)...)
	}
	if patch.InterestCategories != nil {
		p.InterestCategories = append([]models.InterestCategory(nil), (*patch.InterestCategories)...)
	}
	if patch.MostUsedSocialMedia != nil {
		p.MostUsedSocialMedia = append([]models.SocialUsageStats(nil), (*patch.MostUsedSocialMedia)...)
	}
	if patch.ContentInteractionTimes != nil {
		p.ContentInteractionTimes = append([]models.TimeEngagement(nil), (*patch.ContentInteractionTimes)...)
	}

	res := &Result{PreviousTier: p.FanTier}
	if !awardPoints || l.rules.ProfileUpdatePoints <= 0 {
		res.Notifications = append(res.Notifications, Notification{
			Title:       "Profile updated",
			Description: "Your preferences were saved!",
			Severity:    SeverityInfo,
		})
		return res, nil
	}

	res.Notifications = append(res.Notifications, Notification{
		Title:       "Profile updated",
		Description: fmt.Sprintf("Your preferences were saved! (+%d points)", l.rules.ProfileUpdatePoints),
		Severity:    SeverityInfo,
	})
	l.credit(res, l.rules.ProfileUpdatePoints, models.SourceProfile, "Updated profile information")
	return res, nil
}
