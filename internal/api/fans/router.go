package fans

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aimd54/fan-ledger/pkg/logger"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// RouterConfig holds the optional parts of the router.
type RouterConfig struct {
	// Checks are run by GET /health, keyed by dependency name.
	Checks map[string]HealthCheck
	// MetricsPath serves Prometheus metrics when non-empty.
	MetricsPath string
}

// RegisterRoutes mounts the fan API on group.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	fans := group.Group("/fans/:id")
	{
		fans.GET("", h.GetProfile)
		fans.GET("/progress", h.GetProgress)
		fans.GET("/standing", h.GetStanding)
		fans.GET("/transactions", h.GetTransactions)
		fans.GET("/contests", h.GetContestEntries)
		fans.POST("/points", h.EarnPoints)
		fans.POST("/redemptions", h.RedeemReward)
		fans.POST("/contests/:contest_id/entries", h.EnterContest)
		fans.POST("/social/:platform/toggle", h.ToggleSocial)
		fans.PATCH("/profile", h.UpdateProfile)
	}

	group.GET("/rewards", h.GetRewards)
	group.GET("/contests", h.GetContests)
	group.GET("/leaderboard", h.GetLeaderboard)
	group.GET("/tiers", h.GetTierDistribution)
}

// NewRouter builds the gin engine serving the API, health and metrics endpoints.
func NewRouter(h *Handler, cfg RouterConfig, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.GET("/health", healthHandler(cfg.Checks, log))
	if cfg.MetricsPath != "" {
		r.GET(cfg.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func healthHandler(checks map[string]HealthCheck, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				log.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
				results[name] = "unhealthy"
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "healthy"
		}

		overall := "healthy"
		if status != http.StatusOK {
			overall = "unhealthy"
		}

		c.JSON(status, gin.H{
			"status":       overall,
			"checks":       results,
			"generated_at": time.Now().UTC(),
		})
	}
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	}
}
