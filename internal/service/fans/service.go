// Package fans applies ledger operations to stored fan profiles.
package fans

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aimd54/fan-ledger/internal/cache"
	"github.com/aimd54/fan-ledger/internal/ledger"
	"github.com/aimd54/fan-ledger/internal/mattermost"
	"github.com/aimd54/fan-ledger/internal/metrics"
	"github.com/aimd54/fan-ledger/internal/models"
	"github.com/aimd54/fan-ledger/internal/repository"
	"github.com/aimd54/fan-ledger/pkg/logger"
)

// ErrFanNotFound is returned when no profile exists for a fan id.
var ErrFanNotFound = errors.New("fan not found")

// Operation names used in logs and metrics.
const (
	OpEarnPoints    = "earn_points"
	OpRedeemReward  = "redeem_reward"
	OpEnterContest  = "enter_contest"
	OpConnectSocial = "connect_social"
	OpUpdateProfile = "update_profile"
)

// FanRepository interface for fan profile operations.
type FanRepository interface {
	GetByID(id uint) (*models.FanProfile, error)
	Save(s repository.Snapshot) error
	ListTransactions(fanID uint, limit int) ([]models.PointsTransaction, error)
}

// RewardRepository interface for reward catalog operations.
type RewardRepository interface {
	List() ([]models.Reward, error)
}

// ContestRepository interface for contest catalog operations.
type ContestRepository interface {
	List() ([]models.Contest, error)
	ListEntries(fanID uint) ([]models.ContestEntry, error)
}

// ProfileCache interface for cached profile snapshots.
type ProfileCache interface {
	GetProfile(ctx context.Context, fanID uint) (*models.FanProfile, bool, error)
	SetProfile(ctx context.Context, profile *models.FanProfile) error
	InvalidateProfile(ctx context.Context, fanID uint) error
}

// Notifier delivers notifications to an external channel.
type Notifier interface {
	Notify(ctx context.Context, fanID uint, fanName string, n ledger.Notification) error
}

// Options tunes ledger behavior.
type Options struct {
	Rules ledger.Rules
	// ConfirmationDelay is waited before redemptions and contest entries.
	ConfirmationDelay time.Duration
	// LedgerOptions are passed to every ledger, after the rules.
	LedgerOptions []ledger.Option
}

// DefaultOptions returns the standard rules with no delay.
func DefaultOptions() Options {
	return Options{Rules: ledger.DefaultRules()}
}

// Outcome is the result of a successful operation.
type Outcome struct {
	Profile       *models.FanProfile        `json:"profile"`
	Transaction   *models.PointsTransaction `json:"transaction,omitempty"`
	PreviousTier  models.Tier               `json:"previous_tier"`
	TierChanged   bool                      `json:"tier_changed"`
	Notifications []ledger.Notification     `json:"notifications"`
	Entry         *models.ContestEntry      `json:"entry,omitempty"`
}

// Service runs ledger operations against stored fan profiles. Operations on
// one fan are applied one at a time.
type Service struct {
	fans     FanRepository
	rewards  RewardRepository
	contests ContestRepository
	cache    ProfileCache
	notifier Notifier

	opts       Options
	ledgerOpts []ledger.Option

	mu    sync.Mutex
	locks map[uint]*sync.Mutex

	log *logger.Logger
}

// NewService creates a new fans service with concrete dependencies.
// snapshots and notifier may be nil.
func NewService(
	fans *repository.FanRepository,
	rewards *repository.RewardRepository,
	contests *repository.ContestRepository,
	snapshots *cache.Snapshots,
	notifier *mattermost.Client,
	opts Options,
	log *logger.Logger,
) *Service {
	var pc ProfileCache
	if snapshots != nil {
		pc = snapshots
	}
	var n Notifier
	if notifier != nil {
		n = notifier
	}
	return NewServiceWithInterfaces(fans, rewards, contests, pc, n, opts, log)
}

// NewServiceWithInterfaces creates a new fans service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	fans FanRepository,
	rewards RewardRepository,
	contests ContestRepository,
	profileCache ProfileCache,
	notifier Notifier,
	opts Options,
	log *logger.Logger,
) *Service {
	ledgerOpts := append([]ledger.Option{ledger.WithRules(opts.Rules)}, opts.LedgerOptions...)
	return &Service{
		fans:       fans,
		rewards:    rewards,
		contests:   contests,
		cache:      profileCache,
		notifier:   notifier,
		opts:       opts,
		ledgerOpts: ledgerOpts,
		locks:      make(map[uint]*sync.Mutex),
		log:        log,
	}
}

// GetProfile returns the fan's profile with the reward and contest catalogs attached.
func (s *Service) GetProfile(ctx context.Context, fanID uint) (*models.FanProfile, error) {
	profile, err := s.cachedProfile(ctx, fanID)
	if err != nil {
		return nil, err
	}

	rewards, err := s.ListRewards(ctx)
	if err != nil {
		return nil, err
	}
	contests, err := s.ListContests(ctx)
	if err != nil {
		return nil, err
	}

	profile.Rewards = rewards
	profile.AvailableContests = contests
	return profile, nil
}

// GetTierProgress returns the fan's progress toward the next tier.
func (s *Service) GetTierProgress(ctx context.Context, fanID uint) (ledger.Progress, error) {
	profile, err := s.cachedProfile(ctx, fanID)
	if err != nil {
		return ledger.Progress{}, err
	}
	return ledger.New(profile, s.ledgerOpts...).Progress(), nil
}

// ListTransactions returns up to limit of the fan's newest transactions.
func (s *Service) ListTransactions(ctx context.Context, fanID uint, limit int) ([]models.PointsTransaction, error) {
	if _, err := s.cachedProfile(ctx, fanID); err != nil {
		return nil, err
	}
	txns, err := s.fans.ListTransactions(fanID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}

// ListContestEntries returns the contests the fan has entered, newest first.
func (s *Service) ListContestEntries(ctx context.Context, fanID uint) ([]models.ContestEntry, error) {
	if _, err := s.cachedProfile(ctx, fanID); err != nil {
		return nil, err
	}
	entries, err := s.contests.ListEntries(fanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contest entries: %w", err)
	}
	return entries, nil
}

// ListRewards returns the reward catalog.
func (s *Service) ListRewards(_ context.Context) ([]models.Reward, error) {
	rewards, err := s.rewards.List()
	if err != nil {
		return nil, fmt.Errorf("failed to load rewards: %w", err)
	}
	return rewards, nil
}

// ListContests returns the contest catalog.
func (s *Service) ListContests(_ context.Context) ([]models.Contest, error) {
	contests, err := s.contests.List()
	if err != nil {
		return nil, fmt.Errorf("failed to load contests: %w", err)
	}
	return contests, nil
}

// EarnPoints credits points to the fan.
func (s *Service) EarnPoints(ctx context.Context, fanID uint, amount int, source models.TransactionSource, description string) (*Outcome, error) {
	return s.apply(ctx, fanID, OpEarnPoints, false, func(l *ledger.Ledger) (*ledger.Result, *models.ContestEntry, error) {
		res, err := l.EarnPoints(amount, source, description)
		return res, nil, err
	})
}

// RedeemReward spends the fan's points on a catalog reward.
func (s *Service) RedeemReward(ctx context.Context, fanID uint, rewardID string) (*Outcome, error) {
	return s.apply(ctx, fanID, OpRedeemReward, true, func(l *ledger.Ledger) (*ledger.Result, *models.ContestEntry, error) {
		catalog, err := s.rewards.List()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load rewards: %w", err)
		}
		res, err := l.RedeemReward(rewardID, catalog)
		return res, nil, err
	})
}

// EnterContest enters the fan into a contest their tier qualifies for.
func (s *Service) EnterContest(ctx context.Context, fanID uint, contestID string) (*Outcome, error) {
	return s.apply(ctx, fanID, OpEnterContest, true, func(l *ledger.Ledger) (*ledger.Result, *models.ContestEntry, error) {
		catalog, err := s.contests.List()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load contests: %w", err)
		}
		entry, res, err := l.EnterContest(contestID, catalog)
		return res, entry, err
	})
}

// ConnectSocialProfile toggles the fan's connection to platform.
func (s *Service) ConnectSocialProfile(ctx context.Context, fanID uint, platform models.Platform) (*Outcome, error) {
	out, err := s.apply(ctx, fanID, OpConnectSocial, false, func(l *ledger.Ledger) (*ledger.Result, *models.ContestEntry, error) {
		res, err := l.ConnectSocialProfile(platform)
		return res, nil, err
	})
	if err != nil {
		return nil, err
	}

	action := "disconnect"
	if sp := out.Profile.SocialProfile(platform); sp != nil && sp.Connected {
		action = "connect"
	}
	metrics.RecordSocialConnection(string(platform), action)
	return out, nil
}

// UpdateProfile applies a profile edit. Whether it earns points depends on action.
func (s *Service) UpdateProfile(ctx context.Context, fanID uint, action ledger.ProfileAction, patch ledger.ProfilePatch) (*Outcome, error) {
	award, err := ledger.AwardsPoints(action)
	if err != nil {
		metrics.RecordOperation(OpUpdateProfile, metrics.StatusRejected)
		return nil, err
	}
	return s.apply(ctx, fanID, OpUpdateProfile, false, func(l *ledger.Ledger) (*ledger.Result, *models.ContestEntry, error) {
		res, err := l.UpdateProfile(patch, award)
		return res, nil, err
	})
}

type operation func(l *ledger.Ledger) (*ledger.Result, *models.ContestEntry, error)

// apply runs op on a fresh ledger over the stored profile and persists the result.
func (s *Service) apply(ctx context.Context, fanID uint, name string, confirm bool, op operation) (*Outcome, error) {
	if confirm {
		if err := s.waitConfirmation(ctx); err != nil {
			metrics.RecordOperation(name, metrics.StatusRejected)
			return nil, err
		}
	}

	unlock := s.lockFan(fanID)
	defer unlock()

	profile, err := s.loadProfile(fanID)
	if err != nil {
		metrics.RecordOperation(name, statusFor(err))
		return nil, err
	}

	log := s.log.ForOperation(fanID, name)
	l := ledger.New(profile, s.ledgerOpts...)
	res, entry, err := op(l)
	if err != nil {
		metrics.RecordOperation(name, statusFor(err))
		log.Debug().Err(err).Msg("Ledger operation rejected")
		return nil, err
	}

	updated := l.Profile()
	snap := repository.Snapshot{Profile: updated, Entry: entry}
	if res.Transaction != nil {
		snap.Transactions = []models.PointsTransaction{*res.Transaction}
	}
	if err := s.fans.Save(snap); err != nil {
		metrics.RecordOperation(name, metrics.StatusError)
		log.Error().Err(err).Msg("Failed to save fan profile")
		return nil, fmt.Errorf("failed to save fan %d: %w", fanID, err)
	}

	s.invalidate(ctx, fanID)
	s.record(name, res, updated.FanTier)

	event := log.Info().
		Int("total_points", updated.TotalPoints).
		Str("tier", string(updated.FanTier))
	if res.Transaction != nil {
		event = event.Int("amount", res.Transaction.Amount).Str("transaction_id", res.Transaction.ID)
	}
	event.Msg("Ledger operation applied")

	s.notify(ctx, updated, res.Notifications)

	return &Outcome{
		Profile:       updated,
		Transaction:   res.Transaction,
		PreviousTier:  res.PreviousTier,
		TierChanged:   res.TierChanged,
		Notifications: res.Notifications,
		Entry:         entry,
	}, nil
}

// lockFan serializes operations on one fan.
func (s *Service) lockFan(fanID uint) func() {
	s.mu.Lock()
	m, ok := s.locks[fanID]
	if !ok {
		m = &sync.Mutex{}
		s.locks[fanID] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func (s *Service) waitConfirmation(ctx context.Context) error {
	if s.opts.ConfirmationDelay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.opts.ConfirmationDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Service) loadProfile(fanID uint) (*models.FanProfile, error) {
	profile, err := s.fans.GetByID(fanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrFanNotFound, fanID)
		}
		return nil, fmt.Errorf("failed to load fan %d: %w", fanID, err)
	}
	return profile, nil
}

// cachedProfile reads through the profile cache.
func (s *Service) cachedProfile(ctx context.Context, fanID uint) (*models.FanProfile, error) {
	if s.cache != nil {
		profile, ok, err := s.cache.GetProfile(ctx, fanID)
		if err != nil {
			s.log.Warn().Err(err).Uint("fan_id", fanID).Msg("Profile cache read failed")
		}
		metrics.RecordCacheLookup("profile", ok)
		if ok {
			return profile, nil
		}
	}

	// Fill under the fan lock so a concurrent write cannot land between the
	// load and the cache write.
	unlock := s.lockFan(fanID)
	defer unlock()

	profile, err := s.loadProfile(fanID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetProfile(ctx, profile); err != nil {
			s.log.Warn().Err(err).Uint("fan_id", fanID).Msg("Profile cache write failed")
		}
	}
	return profile, nil
}

func (s *Service) invalidate(ctx context.Context, fanID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProfile(ctx, fanID); err != nil {
		s.log.Warn().Err(err).Uint("fan_id", fanID).Msg("Failed to invalidate cached profile")
	}
}

func (s *Service) record(name string, res *ledger.Result, tier models.Tier) {
	metrics.RecordOperation(name, metrics.StatusSuccess)

	if res.TierChanged {
		metrics.RecordTierChange(string(res.PreviousTier), string(tier))
	}

	if txn := res.Transaction; txn != nil {
		if txn.Amount > 0 {
			metrics.RecordPointsEarned(string(txn.Source), txn.Amount)
		} else {
			metrics.RecordPointsRedeemed(-txn.Amount)
		}
	}
}

// notify delivers notifications best effort; failures are only logged.
func (s *Service) notify(ctx context.Context, profile *models.FanProfile, notes []ledger.Notification) {
	if s.notifier == nil {
		return
	}
	for _, n := range notes {
		if err := s.notifier.Notify(ctx, profile.ID, profile.User.Name, n); err != nil {
			metrics.RecordNotification("failed")
			s.log.Warn().Err(err).Uint("fan_id", profile.ID).Str("title", n.Title).Msg("Failed to deliver notification")
			continue
		}
		metrics.RecordNotification("sent")
	}
}

// statusFor classifies an operation error for metrics.
func statusFor(err error) string {
	if IsRejection(err) {
		return metrics.StatusRejected
	}
	return metrics.StatusError
}

// IsRejection reports whether err is a business rule rejection rather than
// an infrastructure failure.
func IsRejection(err error) bool {
	for _, target := range []error{
		ErrFanNotFound,
		ledger.ErrInvalidAmount,
		ledger.ErrInvalidDescription,
		ledger.ErrInvalidSource,
		ledger.ErrInsufficientPoints,
		ledger.ErrRewardNotFound,
		ledger.ErrRewardUnavailable,
		ledger.ErrContestNotFound,
		ledger.ErrTierMismatch,
		ledger.ErrPlatformNotFound,
		ledger.ErrUnknownTier,
		ledger.ErrUnknownAction,
		context.Canceled,
		context.DeadlineExceeded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
