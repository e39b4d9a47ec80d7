// Package scheduler runs periodic tier refresh and leaderboard summary jobs.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/aimd54/fan-ledger/internal/config"
	"github.com/aimd54/fan-ledger/internal/mattermost"
	prommetrics "github.com/aimd54/fan-ledger/internal/metrics"
	"github.com/aimd54/fan-ledger/internal/service/leaderboard"
	"github.com/aimd54/fan-ledger/pkg/logger"
)

// Job names.
const (
	JobTierRefresh        = "tier_refresh"
	JobLeaderboardSummary = "leaderboard_summary"
)

// lockTTL bounds how long a crashed instance can hold a job lock.
const lockTTL = 2 * time.Minute

// Rankings is the leaderboard functionality the jobs need.
type Rankings interface {
	GetLeaderboard(ctx context.Context, limit int) ([]leaderboard.Entry, error)
	RefreshTierGauge(ctx context.Context) ([]leaderboard.TierCount, error)
}

// SummarySender posts leaderboard summaries.
type SummarySender interface {
	SendLeaderboardSummary(ctx context.Context, standings []mattermost.Standing) error
}

// Locker coordinates jobs across instances.
type Locker interface {
	TryLock(ctx context.Context, name, owner string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, name, owner string) (bool, error)
}

// Service handles background job scheduling.
type Service struct {
	config   *config.SchedulerConfig
	rankings Rankings
	sender   SummarySender
	locker   Locker
	owner    string
	log      *logger.Logger
	cron     *cron.Cron
}

// NewService creates a new scheduler service. sender and locker may be nil.
func NewService(
	cfg *config.SchedulerConfig,
	rankings Rankings,
	sender SummarySender,
	locker Locker,
	log *logger.Logger,
) *Service {
	return &Service{
		config:   cfg,
		rankings: rankings,
		sender:   sender,
		locker:   locker,
		owner:    instanceID(),
		log:      log,
	}
}

func instanceID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "fanledger"
	}
	return host + "-" + uuid.NewString()[:8]
}

// Start initializes and starts the cron scheduler.
func (s *Service) Start() error {
	if !s.config.Enabled {
		s.log.Info().Msg("Scheduler is disabled in configuration")
		return nil
	}

	location, err := s.config.GetLocation()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.config.Timezone, err)
	}

	s.cron = cron.New(cron.WithLocation(location))

	_, err = s.cron.AddFunc(s.config.TierRefreshSchedule, func() {
		s.runTierRefresh(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to register tier refresh job: %w", err)
	}

	if s.config.SummaryTime != "" && s.sender != nil {
		cronExpr, err := s.buildCronExpression()
		if err != nil {
			return fmt.Errorf("failed to build cron expression: %w", err)
		}
		_, err = s.cron.AddFunc(cronExpr, func() {
			s.runLeaderboardSummary(context.Background())
		})
		if err != nil {
			return fmt.Errorf("failed to register leaderboard summary job: %w", err)
		}
		s.log.Info().
			Str("schedule", cronExpr).
			Bool("skip_weekends", s.config.SkipWeekends).
			Msg("Leaderboard summary job registered")
	}

	s.cron.Start()

	entries := s.cron.Entries()
	nextRun := ""
	if len(entries) > 0 {
		nextRun = entries[0].Next.Format(time.RFC3339)
	}

	s.log.Info().
		Str("schedule", s.config.TierRefreshSchedule).
		Str("timezone", s.config.Timezone).
		Str("next_run", nextRun).
		Msg("Scheduler started successfully")

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info().Msg("Scheduler stopped")
	}
}

// buildCronExpression generates the summary cron expression from SummaryTime.
func (s *Service) buildCronExpression() (string, error) {
	// Parse time string (format: "HH:MM")
	parts := strings.Split(s.config.SummaryTime, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time format %q, expected HH:MM", s.config.SummaryTime)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour %q", parts[0])
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute %q", parts[1])
	}

	// Format: "minute hour day month weekday"
	if s.config.SkipWeekends {
		return fmt.Sprintf("%d %d * * 1-5", minute, hour), nil
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

// withLock runs fn only if this instance wins the job lock. Without a
// locker fn always runs.
func (s *Service) withLock(ctx context.Context, job string, fn func()) bool {
	if s.locker == nil {
		fn()
		return true
	}

	ok, err := s.locker.TryLock(ctx, job, s.owner, lockTTL)
	if err != nil {
		// run anyway; a cache outage must not stop the jobs
		s.log.Warn().Err(err).Str("job", job).Msg("Failed to acquire job lock")
		fn()
		return true
	}
	if !ok {
		s.log.Debug().Str("job", job).Msg("Job lock held by another instance, skipping")
		prommetrics.RecordSchedulerJobRun(job, "skipped")
		return false
	}
	defer func() {
		released, err := s.locker.Unlock(ctx, job, s.owner)
		if err != nil {
			s.log.Warn().Err(err).Str("job", job).Msg("Failed to release job lock")
			return
		}
		if !released {
			s.log.Warn().Str("job", job).Dur("lock_ttl", lockTTL).Msg("Job lock expired before the run finished")
		}
	}()

	fn()
	return true
}

// runTierRefresh publishes the current tier distribution.
func (s *Service) runTierRefresh(ctx context.Context) {
	s.withLock(ctx, JobTierRefresh, func() {
		start := time.Now()
		defer func() {
			prommetrics.ObserveSchedulerJobDuration(JobTierRefresh, time.Since(start).Seconds())
			prommetrics.SetSchedulerLastRun(JobTierRefresh)
		}()

		dist, err := s.rankings.RefreshTierGauge(ctx)
		if err != nil {
			s.log.Error().Err(err).Msg("Tier refresh job failed")
			prommetrics.RecordSchedulerJobRun(JobTierRefresh, prommetrics.StatusError)
			return
		}

		prommetrics.RecordSchedulerJobRun(JobTierRefresh, prommetrics.StatusSuccess)

		event := s.log.Debug().Dur("duration", time.Since(start))
		for _, tc := range dist {
			event = event.Int64(string(tc.Tier), tc.Count)
		}
		event.Msg("Tier refresh job completed")
	})
}

// runLeaderboardSummary posts the top fans to Mattermost.
func (s *Service) runLeaderboardSummary(ctx context.Context) {
	s.withLock(ctx, JobLeaderboardSummary, func() {
		start := time.Now()
		defer func() {
			prommetrics.ObserveSchedulerJobDuration(JobLeaderboardSummary, time.Since(start).Seconds())
			prommetrics.SetSchedulerLastRun(JobLeaderboardSummary)
		}()

		s.log.Info().Msg("Running leaderboard summary job")

		entries, err := s.rankings.GetLeaderboard(ctx, s.config.SummarySize)
		if err != nil {
			s.log.Error().Err(err).Msg("Failed to build leaderboard")
			prommetrics.RecordSchedulerJobRun(JobLeaderboardSummary, prommetrics.StatusError)
			return
		}

		if err := s.sender.SendLeaderboardSummary(ctx, buildStandings(entries)); err != nil {
			s.log.Error().Err(err).Msg("Failed to send leaderboard summary")
			prommetrics.RecordSchedulerJobRun(JobLeaderboardSummary, prommetrics.StatusError)
			return
		}

		prommetrics.RecordSchedulerJobRun(JobLeaderboardSummary, prommetrics.StatusSuccess)
		s.log.Info().
			Int("fans", len(entries)).
			Dur("duration", time.Since(start)).
			Msg("Successfully sent leaderboard summary")
	})
}
