package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordPointsEarned(t *testing.T) {
	// Reset the counter before test
	PointsEarnedTotal.Reset()

	RecordPointsEarned("game", 60)
	RecordPointsEarned("game", 40)
	RecordPointsEarned("social", 200)

	count := testutil.ToFloat64(PointsEarnedTotal.WithLabelValues("game"))
	if count != 100 {
		t.Errorf("Expected game points = 100, got %f", count)
	}

	count = testutil.ToFloat64(PointsEarnedTotal.WithLabelValues("social"))
	if count != 200 {
		t.Errorf("Expected social points = 200, got %f", count)
	}
}

func TestRecordPointsRedeemed(t *testing.T) {
	before := testutil.ToFloat64(PointsRedeemedTotal)

	RecordPointsRedeemed(800)

	after := testutil.ToFloat64(PointsRedeemedTotal)
	if after-before != 800 {
		t.Errorf("Expected redeemed delta = 800, got %f", after-before)
	}
}

func TestRecordOperation(t *testing.T) {
	LedgerOperationsTotal.Reset()

	RecordOperation("redeem_reward", StatusSuccess)
	RecordOperation("redeem_reward", StatusRejected)
	RecordOperation("redeem_reward", StatusRejected)

	count := testutil.ToFloat64(LedgerOperationsTotal.WithLabelValues("redeem_reward", StatusRejected))
	if count != 2 {
		t.Errorf("Expected rejected count = 2, got %f", count)
	}
}

func TestRecordTierChange(t *testing.T) {
	TierChangesTotal.Reset()

	RecordTierChange("bronze", "silver")

	count := testutil.ToFloat64(TierChangesTotal.WithLabelValues("bronze", "silver"))
	if count != 1 {
		t.Errorf("Expected bronze->silver count = 1, got %f", count)
	}
}

func TestRecordSocialConnection(t *testing.T) {
	SocialConnectionsTotal.Reset()

	RecordSocialConnection("twitch", "connect")
	RecordSocialConnection("twitch", "disconnect")

	if got := testutil.CollectAndCount(SocialConnectionsTotal); got != 2 {
		t.Errorf("Expected 2 series, got %d", got)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	CacheRequestsTotal.Reset()

	RecordCacheLookup("profile", true)
	RecordCacheLookup("profile", false)
	RecordCacheLookup("profile", false)

	if got := testutil.ToFloat64(CacheRequestsTotal.WithLabelValues("profile", "miss")); got != 2 {
		t.Errorf("Expected 2 misses, got %f", got)
	}
	if got := testutil.ToFloat64(CacheRequestsTotal.WithLabelValues("profile", "hit")); got != 1 {
		t.Errorf("Expected 1 hit, got %f", got)
	}
}

func TestSetFansByTier(t *testing.T) {
	SetFansByTier("gold", 3)
	SetFansByTier("gold", 4)

	count := testutil.ToFloat64(FansByTier.WithLabelValues("gold"))
	if count != 4 {
		t.Errorf("Expected gold fans = 4, got %f", count)
	}
}

func TestSchedulerMetrics(t *testing.T) {
	SchedulerJobsRunTotal.Reset()

	RecordSchedulerJobRun("tier_refresh", StatusSuccess)
	SetSchedulerLastRun("tier_refresh")
	ObserveSchedulerJobDuration("tier_refresh", 0.2)

	count := testutil.ToFloat64(SchedulerJobsRunTotal.WithLabelValues("tier_refresh", StatusSuccess))
	if count != 1 {
		t.Errorf("Expected job runs = 1, got %f", count)
	}

	ts := testutil.ToFloat64(SchedulerLastRunTimestamp.WithLabelValues("tier_refresh"))
	if ts <= 0 {
		t.Errorf("Expected last run timestamp to be set, got %f", ts)
	}
}
