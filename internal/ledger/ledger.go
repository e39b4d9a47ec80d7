// Package ledger implements fan points accounting: earning and redeeming
// points and deriving the fan's tier and score from the points total.
//
// A Ledger owns one fan profile and is not safe for concurrent use; callers
// serialize access per fan.
package ledger

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aimd54/fan-ledger/internal/models"
)

// MaxTotalPoints bounds a fan's points total; it is the largest value the
// total_points column holds.
const MaxTotalPoints = math.MaxInt32

// Rules holds the fixed point awards and the redemption recompute policy.
type Rules struct {
	ProfileUpdatePoints int
	SocialConnectPoints int
	ContestEntryPoints  int

	// RecomputeOnRedeem re-derives tier and score after a redemption.
	// When false the tier and score keep their pre-redemption values.
	RecomputeOnRedeem bool
}

// DefaultRules returns the standard award amounts.
func DefaultRules() Rules {
	return Rules{
		ProfileUpdatePoints: 50,
		SocialConnectPoints: 200,
		ContestEntryPoints:  25,
		RecomputeOnRedeem:   true,
	}
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the time source for transaction dates.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// WithIDGenerator sets the transaction id generator.
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) {
		l.newID = newID
	}
}

// WithRules overrides the default rules.
func WithRules(r Rules) Option {
	return func(l *Ledger) {
		l.rules = r
	}
}

// Result is the outcome of a successful ledger operation.
type Result struct {
	// Transaction is the entry appended by the operation, nil if none.
	Transaction   *models.PointsTransaction
	PreviousTier  models.Tier
	TierChanged   bool
	Notifications []Notification
}

// Ledger is the single owner of a fan profile's points state.
type Ledger struct {
	profile *models.FanProfile
	rules   Rules
	now     func() time.Time
	newID   func() string
}

// New creates a ledger over a copy of profile.
func New(profile *models.FanProfile, opts ...Option) *Ledger {
	l := &Ledger{
		profile: profile.Clone(),
		rules:   DefaultRules(),
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Profile returns a copy of the current profile.
func (l *Ledger) Profile() *models.FanProfile {
	return l.profile.Clone()
}

// TotalPoints returns the current points total.
func (l *Ledger) TotalPoints() int {
	return l.profile.TotalPoints
}

// Progress returns the fan's progress toward the next tier.
func (l *Ledger) Progress() Progress {
	return ProgressFor(l.profile.TotalPoints)
}

// Reconcile re-derives tier and score from the points total. It reports
// whether anything changed.
func (l *Ledger) Reconcile() bool {
	tier, score := l.profile.FanTier, l.profile.FanScore
	l.recompute()
	return tier != l.profile.FanTier || score != l.profile.FanScore
}

// EarnPoints credits amount points to the fan.
func (l *Ledger) EarnPoints(amount int, source models.TransactionSource, description string) (*Result, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: %d must be positive", ErrInvalidAmount, amount)
	}
	if !source.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSource, source)
	}
	if strings.TrimSpace(description) == "" {
		return nil, ErrInvalidDescription
	}
	if err := l.checkCredit(amount); err != nil {
		return nil, err
	}

	res := &Result{}
	l.credit(res, amount, source, description)
	return res, nil
}

// RedeemReward debits the cost of the catalog reward with rewardID.
func (l *Ledger) RedeemReward(rewardID string, catalog []models.Reward) (*Result, error) {
	reward := findReward(catalog, rewardID)
	if reward == nil {
		return nil, fmt.Errorf("%w: %s", ErrRewardNotFound, rewardID)
	}
	if !reward.Available {
		return nil, fmt.Errorf("%w: %s", ErrRewardUnavailable, reward.Name)
	}
	if l.profile.TotalPoints < reward.PointsCost {
		return nil, fmt.Errorf("%w: need %d more points for %s",
			ErrInsufficientPoints, reward.PointsCost-l.profile.TotalPoints, reward.Name)
	}

	res := &Result{PreviousTier: l.profile.FanTier}
	txn := l.appendTransaction(-reward.PointsCost, models.SourceReward, "Redeemed: "+reward.Name)
	res.Transaction = &txn
	res.Notifications = append(res.Notifications, Notification{
		Title:       "Reward redeemed!",
		Description: "You redeemed: " + reward.Name,
		Severity:    SeveritySuccess,
	})

	if l.rules.RecomputeOnRedeem {
		l.recompute()
		l.noteTierChange(res)
	}
	return res, nil
}

// checkCredit rejects an award that would push the total past MaxTotalPoints.
func (l *Ledger) checkCredit(amount int) error {
	if amount > MaxTotalPoints-l.profile.TotalPoints {
		return fmt.Errorf("%w: %d would exceed the %d points limit", ErrInvalidAmount, amount, MaxTotalPoints)
	}
	return nil
}

// credit applies a validated positive amount and records the notifications.
func (l *Ledger) credit(res *Result, amount int, source models.TransactionSource, description string) {
	res.PreviousTier = l.profile.FanTier
	txn := l.appendTransaction(amount, source, description)
	res.Transaction = &txn
	l.recompute()

	res.Notifications = append(res.Notifications, pointsAdded(amount, description))
	l.noteTierChange(res)
}

func (l *Ledger) noteTierChange(res *Result) {
	if l.profile.FanTier == res.PreviousTier {
		return
	}
	res.TierChanged = true
	res.Notifications = append(res.Notifications, tierChanged(res.PreviousTier, l.profile.FanTier))
}

// appendTransaction records a points change, newest first, and adjusts the total.
func (l *Ledger) appendTransaction(amount int, source models.TransactionSource, description string) models.PointsTransaction {
	txn := models.PointsTransaction{
		ID:          l.newID(),
		FanID:       l.profile.ID,
		Sequence:    l.nextSequence(),
		Date:        l.now().UTC(),
		Amount:      amount,
		Source:      source,
		Description: description,
	}
	l.profile.PointsHistory = append([]models.PointsTransaction{txn}, l.profile.PointsHistory...)
	l.profile.TotalPoints += amount
	return txn
}

func (l *Ledger) nextSequence() int64 {
	var highest int64
	for _, t := range l.profile.PointsHistory {
		if t.Sequence > highest {
			highest = t.Sequence
		}
	}
	return highest + 1
}

func (l *Ledger) recompute() {
	l.profile.FanScore = ScoreFor(l.profile.TotalPoints)
	l.profile.FanTier = TierFor(l.profile.TotalPoints)
}

func findReward(catalog []models.Reward, id string) *models.Reward {
	for i := range catalog {
		if catalog[i].ID == id {
			return &catalog[i]
		}
	}
	return nil
}
