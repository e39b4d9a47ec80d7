package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/fan-ledger/internal/models"
)

func TestConnectSocialProfile_Connect(t *testing.T) {
	l := newTestLedger(newProfile(100))

	res, err := l.ConnectSocialProfile(models.PlatformTwitch)
	require.NoError(t, err)

	p := l.Profile()
	assert.True(t, p.SocialProfile(models.PlatformTwitch).Connected)
	assert.Equal(t, 300, p.TotalPoints)
	require.Len(t, p.PointsHistory, 1)
	assert.Equal(t, 200, p.PointsHistory[0].Amount)
	assert.Equal(t, models.SourceSocial, p.PointsHistory[0].Source)
	assert.Equal(t, "Connected twitch account", p.PointsHistory[0].Description)
	require.NotNil(t, res.Transaction)
	assert.Equal(t, "Connected with twitch", res.Notifications[0].Title)
}

func TestConnectSocialProfile_DisconnectKeepsPoints(t *testing.T) {
	l := newTestLedger(newProfile(100))

	res, err := l.ConnectSocialProfile(models.PlatformTwitter)
	require.NoError(t, err)

	p := l.Profile()
	assert.False(t, p.SocialProfile(models.PlatformTwitter).Connected)
	assert.Equal(t, 100, p.TotalPoints)
	assert.Empty(t, p.PointsHistory)
	assert.Nil(t, res.Transaction)
	assert.Equal(t, SeverityDestructive, res.Notifications[0].Severity)
}

func TestConnectSocialProfile_UnknownPlatform(t *testing.T) {
	l := newTestLedger(newProfile(100))

	_, err := l.ConnectSocialProfile(models.PlatformYouTube)
	assert.ErrorIs(t, err, ErrPlatformNotFound)
	assert.Equal(t, 100, l.TotalPoints())
}

func TestConnectSocialProfile_ReconnectAwardsAgain(t *testing.T) {
	l := newTestLedger(newProfile(0))

	for i := 0; i < 3; i++ {
		_, err := l.ConnectSocialProfile(models.PlatformTwitch)
		require.NoError(t, err)
	}

	// connect, disconnect, connect
	assert.Equal(t, 400, l.TotalPoints())
	assert.Len(t, l.Profile().PointsHistory, 2)
}

func TestUpdateProfile_AwardsPoints(t *testing.T) {
	l := newTestLedger(newProfile(480))
	teams := []string{"FURIA", "NAVI"}

	res, err := l.UpdateProfile(ProfilePatch{FavoriteTeams: &teams}, true)
	require.NoError(t, err)

	p := l.Profile()
	assert.Equal(t, teams, p.FavoriteTeams)
	assert.Equal(t, 530, p.TotalPoints)
	assert.Equal(t, models.TierSilver, p.FanTier)
	assert.True(t, res.TierChanged)
	require.Len(t, p.PointsHistory, 1)
	assert.Equal(t, models.SourceProfile, p.PointsHistory[0].Source)
	assert.Equal(t, 50, p.PointsHistory[0].Amount)
}

func TestUpdateProfile_NoAward(t *testing.T) {
	l := newTestLedger(newProfile(480))
	interests := []string{"CS2"}

	res, err := l.UpdateProfile(ProfilePatch{Interests: &interests}, false)
	require.NoError(t, err)

	p := l.Profile()
	assert.Equal(t, interests, p.Interests)
	assert.Equal(t, 480, p.TotalPoints)
	assert.Nil(t, res.Transaction)
	assert.Len(t, res.Notifications, 1)
}

func TestUpdateProfile_NilFieldsUntouched(t *testing.T) {
	src := newProfile(0)
	src.FavoriteTeams = []string{"FURIA"}
	l := newTestLedger(src)

	cats := []models.InterestCategory{{Category: "games", InterestLevel: 90, SpecificInterests: []string{"CS2"}}}
	_, err := l.UpdateProfile(ProfilePatch{InterestCategories: &cats}, false)
	require.NoError(t, err)

	p := l.Profile()
	assert.Equal(t, []string{"FURIA"}, p.FavoriteTeams)
	assert.Equal(t, cats, p.InterestCategories)
}

func TestAwardsPoints(t *testing.T) {
	tests := []struct {
		action ProfileAction
		want   bool
	}{
		{ActionAddTeam, true},
		{ActionRemoveTeam, false},
		{ActionAddPlayer, true},
		{ActionRemovePlayer, false},
		{ActionSetFavoritePlayer, false},
		{ActionAddInterest, true},
		{ActionRemoveInterest, false},
		{ActionSetInterestLevel, false},
		{ActionSetSocialPreferences, false},
	}

	for _, tt := range tests {
		got, err := AwardsPoints(tt.action)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got, "action %s", tt.action)
	}

	_, err := AwardsPoints("rename")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func contestCatalog() []models.Contest {
	return []models.Contest{
		{ID: "major", Name: "Trip to the Major", MinLevel: models.TierGold},
		{ID: "team-day", Name: "Day with the players", MinLevel: models.TierSilver},
		{ID: "gear", Name: "Gaming gear", MinLevel: models.TierBronze},
		{ID: "broken", Name: "Broken", MinLevel: "diamond"},
	}
}

func TestEnterContest(t *testing.T) {
	l := newTestLedger(newProfile(600))

	entry, res, err := l.EnterContest("team-day", contestCatalog())
	require.NoError(t, err)

	assert.Equal(t, "team-day", entry.ContestID)
	assert.Equal(t, uint(7), entry.FanID)
	assert.Equal(t, fixedNow, entry.EnteredAt)
	assert.Equal(t, 625, l.TotalPoints())
	require.NotNil(t, res.Transaction)
	assert.Equal(t, models.SourceEngagement, res.Transaction.Source)
	assert.Equal(t, "Entered contest: Day with the players", res.Transaction.Description)
}

func TestEnterContest_TierMismatch(t *testing.T) {
	l := newTestLedger(newProfile(600))

	_, _, err := l.EnterContest("major", contestCatalog())
	assert.ErrorIs(t, err, ErrTierMismatch)

	_, _, err2 := l.EnterContest("major", contestCatalog())
	assert.Equal(t, err.Error(), err2.Error())
	assert.Equal(t, 600, l.TotalPoints())
}

func TestEnterContest_Errors(t *testing.T) {
	l := newTestLedger(newProfile(9000))

	_, _, err := l.EnterContest("nope", contestCatalog())
	assert.ErrorIs(t, err, ErrContestNotFound)

	_, _, err = l.EnterContest("broken", contestCatalog())
	assert.ErrorIs(t, err, ErrUnknownTier)

	assert.Equal(t, 9000, l.TotalPoints())
}
