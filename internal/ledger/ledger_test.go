package ledger

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/fan-ledger/internal/models"
)

var fixedNow = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

// newTestLedger creates a ledger with a fixed clock and sequential ids.
func newTestLedger(profile *models.FanProfile, opts ...Option) *Ledger {
	n := 0
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("txn-%d", n)
		}),
	}
	return New(profile, append(base, opts...)...)
}

func newProfile(points int) *models.FanProfile {
	return &models.FanProfile{
		ID:          7,
		TotalPoints: points,
		FanScore:    ScoreFor(points),
		FanTier:     TierFor(points),
		SocialProfiles: []models.SocialProfile{
			{Platform: models.PlatformTwitter, Username: "fan", Connected: true},
			{Platform: models.PlatformTwitch, Username: "fan", Connected: false},
		},
	}
}

func testCatalog() []models.Reward {
	return []models.Reward{
		{ID: "stickers", Name: "Exclusive stickers", PointsCost: 800, Available: true, Type: models.RewardTypePhysical},
		{ID: "wallpaper", Name: "Exclusive wallpaper", PointsCost: 200, Available: true, Type: models.RewardTypeDigital},
		{ID: "retired", Name: "Retired jersey", PointsCost: 10, Available: false, Type: models.RewardTypePhysical},
	}
}

func TestEarnPoints_CrossesSilver(t *testing.T) {
	l := newTestLedger(newProfile(450))

	res, err := l.EarnPoints(60, models.SourceGame, "x")
	require.NoError(t, err)

	p := l.Profile()
	assert.Equal(t, 510, p.TotalPoints)
	assert.Equal(t, models.TierSilver, p.FanTier)
	assert.Equal(t, 5, p.FanScore)
	assert.True(t, res.TierChanged)
	assert.Equal(t, models.TierBronze, res.PreviousTier)

	require.Len(t, p.PointsHistory, 1)
	txn := p.PointsHistory[0]
	assert.Equal(t, "txn-1", txn.ID)
	assert.Equal(t, 60, txn.Amount)
	assert.Equal(t, models.SourceGame, txn.Source)
	assert.Equal(t, fixedNow, txn.Date)
	assert.Equal(t, uint(7), txn.FanID)

	require.Len(t, res.Notifications, 2)
	assert.Equal(t, "Points added", res.Notifications[0].Title)
	assert.Equal(t, "New tier unlocked!", res.Notifications[1].Title)
}

func TestEarnPoints_NoTierChange(t *testing.T) {
	l := newTestLedger(newProfile(100))

	res, err := l.EarnPoints(50, models.SourceSocial, "Shared a post")
	require.NoError(t, err)

	assert.False(t, res.TierChanged)
	assert.Len(t, res.Notifications, 1)
	assert.Equal(t, models.TierBronze, l.Profile().FanTier)
}

func TestEarnPoints_Validation(t *testing.T) {
	tests := []struct {
		name        string
		amount      int
		source      models.TransactionSource
		description string
		wantErr     error
	}{
		{"zero amount", 0, models.SourceGame, "x", ErrInvalidAmount},
		{"negative amount", -5, models.SourceGame, "x", ErrInvalidAmount},
		{"unknown source", 10, "lottery", "x", ErrInvalidSource},
		{"empty description", 10, models.SourceGame, "  ", ErrInvalidDescription},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger(newProfile(300))

			res, err := l.EarnPoints(tt.amount, tt.source, tt.description)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, res)

			p := l.Profile()
			assert.Equal(t, 300, p.TotalPoints)
			assert.Empty(t, p.PointsHistory)
		})
	}
}

func TestEarnPoints_RejectsTotalPastLimit(t *testing.T) {
	tests := []struct {
		name   string
		start  int
		amount int
	}{
		{"max int from gold", 2150, math.MaxInt},
		{"one past the limit", MaxTotalPoints, 1},
		{"just over from gold", 2150, MaxTotalPoints - 2149},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger(newProfile(tt.start))

			res, err := l.EarnPoints(tt.amount, models.SourceGame, "x")
			assert.ErrorIs(t, err, ErrInvalidAmount)
			assert.Nil(t, res)

			p := l.Profile()
			assert.Equal(t, tt.start, p.TotalPoints)
			assert.Equal(t, TierFor(tt.start), p.FanTier)
			assert.Empty(t, p.PointsHistory)
		})
	}
}

func TestEarnPoints_UpToLimit(t *testing.T) {
	l := newTestLedger(newProfile(2150))

	_, err := l.EarnPoints(MaxTotalPoints-2150, models.SourceGame, "x")
	require.NoError(t, err)

	p := l.Profile()
	assert.Equal(t, MaxTotalPoints, p.TotalPoints)
	assert.Equal(t, models.TierPlatinum, p.FanTier)
	assert.Equal(t, 100, p.FanScore)
}

func TestAwards_RejectedAtLimit(t *testing.T) {
	l := newTestLedger(newProfile(MaxTotalPoints))

	_, err := l.ConnectSocialProfile(models.PlatformTwitch)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, _, err = l.EnterContest("vip", []models.Contest{{ID: "vip", Name: "VIP", MinLevel: models.TierBronze}})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = l.UpdateProfile(ProfilePatch{Interests: &[]string{"esports"}}, true)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	p := l.Profile()
	assert.Equal(t, MaxTotalPoints, p.TotalPoints)
	assert.False(t, p.SocialProfile(models.PlatformTwitch).Connected)
	assert.Empty(t, p.Interests)
	assert.Empty(t, p.PointsHistory)
}

func TestEarnPoints_SumAndMonotonicTier(t *testing.T) {
	l := newTestLedger(newProfile(0))
	amounts := []int{120, 380, 1, 999, 500, 2000, 1, 3000}

	sum := 0
	prevRank, _ := Rank(l.Profile().FanTier)
	for _, a := range amounts {
		_, err := l.EarnPoints(a, models.SourceEvent, "event")
		require.NoError(t, err)
		sum += a

		p := l.Profile()
		assert.Equal(t, sum, p.TotalPoints)
		assert.Equal(t, TierFor(sum), p.FanTier)
		assert.Equal(t, ScoreFor(sum), p.FanScore)

		rank, _ := Rank(p.FanTier)
		assert.GreaterOrEqual(t, rank, prevRank)
		prevRank = rank
	}
}

func TestEarnPoints_HistoryNewestFirst(t *testing.T) {
	l := newTestLedger(newProfile(0))

	_, err := l.EarnPoints(10, models.SourceGame, "first")
	require.NoError(t, err)
	_, err = l.EarnPoints(20, models.SourceGame, "second")
	require.NoError(t, err)

	p := l.Profile()
	require.Len(t, p.PointsHistory, 2)
	assert.Equal(t, "second", p.PointsHistory[0].Description)
	assert.Equal(t, int64(2), p.PointsHistory[0].Sequence)
	assert.Equal(t, "first", p.PointsHistory[1].Description)
	assert.Equal(t, int64(1), p.PointsHistory[1].Sequence)
}

func TestEarnPoints_UniqueDefaultIDs(t *testing.T) {
	l := New(newProfile(0))

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		res, err := l.EarnPoints(1, models.SourceGame, "tick")
		require.NoError(t, err)
		assert.False(t, seen[res.Transaction.ID], "duplicate id %s", res.Transaction.ID)
		seen[res.Transaction.ID] = true
	}
}

func TestRedeemReward_Success(t *testing.T) {
	l := newTestLedger(newProfile(2150))

	res, err := l.RedeemReward("stickers", testCatalog())
	require.NoError(t, err)

	p := l.Profile()
	assert.Equal(t, 1350, p.TotalPoints)
	require.Len(t, p.PointsHistory, 1)
	assert.Equal(t, -800, p.PointsHistory[0].Amount)
	assert.Equal(t, models.SourceReward, p.PointsHistory[0].Source)
	assert.Equal(t, "Redeemed: Exclusive stickers", p.PointsHistory[0].Description)

	// tier and score follow the new total
	assert.Equal(t, models.TierSilver, p.FanTier)
	assert.Equal(t, 13, p.FanScore)
	assert.True(t, res.TierChanged)
	assert.Equal(t, models.TierGold, res.PreviousTier)
}

func TestRedeemReward_WithoutRecompute(t *testing.T) {
	rules := DefaultRules()
	rules.RecomputeOnRedeem = false
	l := newTestLedger(newProfile(2150), WithRules(rules))

	res, err := l.RedeemReward("stickers", testCatalog())
	require.NoError(t, err)

	p := l.Profile()
	assert.Equal(t, 1350, p.TotalPoints)
	assert.Equal(t, models.TierGold, p.FanTier)
	assert.Equal(t, 21, p.FanScore)
	assert.False(t, res.TierChanged)
}

func TestRedeemReward_InsufficientPoints(t *testing.T) {
	l := newTestLedger(newProfile(100))

	_, err := l.RedeemReward("wallpaper", testCatalog())
	assert.ErrorIs(t, err, ErrInsufficientPoints)
	assert.Contains(t, err.Error(), "need 100 more points")

	// retrying without other changes fails the same way
	_, err2 := l.RedeemReward("wallpaper", testCatalog())
	assert.ErrorIs(t, err2, ErrInsufficientPoints)
	assert.Equal(t, err.Error(), err2.Error())

	p := l.Profile()
	assert.Equal(t, 100, p.TotalPoints)
	assert.Empty(t, p.PointsHistory)
}

func TestRedeemReward_ExactBalance(t *testing.T) {
	l := newTestLedger(newProfile(200))

	_, err := l.RedeemReward("wallpaper", testCatalog())
	require.NoError(t, err)
	assert.Equal(t, 0, l.TotalPoints())
}

func TestRedeemReward_NeverNegative(t *testing.T) {
	for points := 0; points < 1000; points += 37 {
		l := newTestLedger(newProfile(points))
		for _, r := range testCatalog() {
			_, _ = l.RedeemReward(r.ID, testCatalog())
			assert.GreaterOrEqual(t, l.TotalPoints(), 0)
		}
	}
}

func TestRedeemReward_NotFoundAndUnavailable(t *testing.T) {
	l := newTestLedger(newProfile(5000))

	_, err := l.RedeemReward("missing", testCatalog())
	assert.ErrorIs(t, err, ErrRewardNotFound)

	_, err = l.RedeemReward("retired", testCatalog())
	assert.ErrorIs(t, err, ErrRewardUnavailable)

	assert.Equal(t, 5000, l.TotalPoints())
	assert.Empty(t, l.Profile().PointsHistory)
}

func TestNew_CopiesProfile(t *testing.T) {
	src := newProfile(100)
	l := newTestLedger(src)

	_, err := l.EarnPoints(500, models.SourceEvent, "Fan day")
	require.NoError(t, err)

	assert.Equal(t, 100, src.TotalPoints)
	assert.Empty(t, src.PointsHistory)

	snap := l.Profile()
	snap.TotalPoints = 0
	assert.Equal(t, 600, l.TotalPoints())
}

func TestReconcile(t *testing.T) {
	p := newProfile(2150)
	p.FanScore = 78
	l := newTestLedger(p)

	assert.True(t, l.Reconcile())
	assert.Equal(t, 21, l.Profile().FanScore)
	assert.False(t, l.Reconcile())
}
