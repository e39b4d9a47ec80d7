package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	fanapi "github.com/aimd54/fan-ledger/internal/api/fans"
	"github.com/aimd54/fan-ledger/internal/cache"
	"github.com/aimd54/fan-ledger/internal/config"
	"github.com/aimd54/fan-ledger/internal/ledger"
	"github.com/aimd54/fan-ledger/internal/mattermost"
	"github.com/aimd54/fan-ledger/internal/repository"
	"github.com/aimd54/fan-ledger/internal/service/fans"
	"github.com/aimd54/fan-ledger/internal/service/leaderboard"
	"github.com/aimd54/fan-ledger/internal/service/scheduler"
	"github.com/aimd54/fan-ledger/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(*configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	db, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}()

	checks := map[string]fanapi.HealthCheck{
		"database": func(context.Context) error { return db.Health() },
	}

	var snapshots *cache.Snapshots
	if cfg.Cache.Enabled {
		rc, err := cache.NewRedisCache(ctx, &cfg.Database.Redis, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := rc.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close Redis client")
			}
		}()
		snapshots = cache.NewSnapshots(rc, cfg.Cache.ProfileTTLDuration(), cfg.Cache.LeaderboardTTLDuration())
		checks["redis"] = rc.Health
	}

	var notifier *mattermost.Client
	if cfg.Mattermost.Enabled {
		notifier = mattermost.NewClient(&cfg.Mattermost, log.Component("mattermost"))
	}

	fanRepo := repository.NewFanRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	contestRepo := repository.NewContestRepository(db)

	opts := fans.Options{
		Rules: ledger.Rules{
			ProfileUpdatePoints: cfg.Ledger.ProfileUpdatePoints,
			SocialConnectPoints: cfg.Ledger.SocialConnectPoints,
			ContestEntryPoints:  cfg.Ledger.ContestEntryPoints,
			RecomputeOnRedeem:   cfg.Ledger.RecomputeOnRedeem,
		},
		ConfirmationDelay: cfg.Ledger.ConfirmationDelay,
	}
	fanService := fans.NewService(fanRepo, rewardRepo, contestRepo, snapshots, notifier, opts, log.Component("fans"))
	leaderboardService := leaderboard.NewService(fanRepo, snapshots, log.Component("leaderboard"))

	sched := newScheduler(cfg, leaderboardService, snapshots, notifier, log.Component("scheduler"))
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	routerCfg := fanapi.RouterConfig{Checks: checks}
	prom := cfg.Metrics.Prometheus
	separateMetrics := prom.Enabled && prom.Port != 0 && prom.Port != cfg.Server.Port
	if prom.Enabled && !separateMetrics {
		routerCfg.MetricsPath = prom.Path
	}

	handler := fanapi.NewHandler(fanService, leaderboardService, log.Component("api"))
	servers := []*http.Server{{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           fanapi.NewRouter(handler, routerCfg, log.Component("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if separateMetrics {
		mux := http.NewServeMux()
		mux.Handle(prom.Path, promhttp.Handler())
		servers = append(servers, &http.Server{
			Addr:              fmt.Sprintf(":%d", prom.Port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("server %s failed: %w", srv.Addr, err)
			}
		}(srv)
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received")
	case err = <-errCh:
		log.Error().Err(err).Msg("HTTP server stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			log.Warn().Err(serr).Str("addr", srv.Addr).Msg("Graceful shutdown failed")
		}
	}

	log.Info().Msg("Server stopped")
	return err
}

// newScheduler wires the optional dependencies so that absent ones stay nil interfaces.
func newScheduler(
	cfg *config.Config,
	rankings *leaderboard.Service,
	snapshots *cache.Snapshots,
	notifier *mattermost.Client,
	log *logger.Logger,
) *scheduler.Service {
	var locker scheduler.Locker
	if snapshots != nil {
		locker = snapshots
	}
	var sender scheduler.SummarySender
	if notifier != nil {
		sender = notifier
	}
	return scheduler.NewService(&cfg.Scheduler, rankings, sender, locker, log)
}
