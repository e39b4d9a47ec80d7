// Package fans provides REST API handlers for fan profiles, points and rewards.
package fans

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/fan-ledger/internal/ledger"
	"github.com/aimd54/fan-ledger/internal/models"
	fansvc "github.com/aimd54/fan-ledger/internal/service/fans"
	"github.com/aimd54/fan-ledger/internal/service/leaderboard"
	"github.com/aimd54/fan-ledger/pkg/logger"
)

// FanService interface for fan ledger operations.
type FanService interface {
	GetProfile(ctx context.Context, fanID uint) (*models.FanProfile, error)
	GetTierProgress(ctx context.Context, fanID uint) (ledger.Progress, error)
	ListTransactions(ctx context.Context, fanID uint, limit int) ([]models.PointsTransaction, error)
	ListContestEntries(ctx context.Context, fanID uint) ([]models.ContestEntry, error)
	ListRewards(ctx context.Context) ([]models.Reward, error)
	ListContests(ctx context.Context) ([]models.Contest, error)
	EarnPoints(ctx context.Context, fanID uint, amount int, source models.TransactionSource, description string) (*fansvc.Outcome, error)
	RedeemReward(ctx context.Context, fanID uint, rewardID string) (*fansvc.Outcome, error)
	EnterContest(ctx context.Context, fanID uint, contestID string) (*fansvc.Outcome, error)
	ConnectSocialProfile(ctx context.Context, fanID uint, platform models.Platform) (*fansvc.Outcome, error)
	UpdateProfile(ctx context.Context, fanID uint, action ledger.ProfileAction, patch ledger.ProfilePatch) (*fansvc.Outcome, error)
}

// LeaderboardService interface for ranking operations.
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, limit int) ([]leaderboard.Entry, error)
	GetTierDistribution(ctx context.Context) ([]leaderboard.TierCount, error)
	GetFanStanding(ctx context.Context, fanID uint) (*leaderboard.Standing, error)
}

// Handler handles fan API requests.
type Handler struct {
	fanService         FanService
	leaderboardService LeaderboardService
	log                *logger.Logger
}

// NewHandler creates a new fan handler.
func NewHandler(fanService *fansvc.Service, leaderboardService *leaderboard.Service, log *logger.Logger) *Handler {
	return NewHandlerWithInterfaces(fanService, leaderboardService, log)
}

// NewHandlerWithInterfaces creates a new fan handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(fanService FanService, leaderboardService LeaderboardService, log *logger.Logger) *Handler {
	return &Handler{
		fanService:         fanService,
		leaderboardService: leaderboardService,
		log:                log,
	}
}

// EarnPointsRequest is the body of POST /fans/:id/points.
type EarnPointsRequest struct {
	Amount      int                      `json:"amount"`
	Source      models.TransactionSource `json:"source"`
	Description string                   `json:"description"`
}

// RedeemRequest is the body of POST /fans/:id/redemptions.
type RedeemRequest struct {
	RewardID string `json:"reward_id" binding:"required"`
}

// UpdateProfileRequest is the body of PATCH /fans/:id/profile.
type UpdateProfileRequest struct {
	Action ledger.ProfileAction `json:"action" binding:"required"`
	Patch  ledger.ProfilePatch  `json:"patch"`
}

// GetProfile returns the fan's profile with catalogs attached.
// GET /api/v1/fans/:id.
func (h *Handler) GetProfile(c *gin.Context) {
	fanID, err := h.parseFanID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.fanService.GetProfile(c.Request.Context(), fanID)
	if err != nil {
		h.handleError(c, err, fanID, "Failed to retrieve fan profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":      profile,
		"generated_at": time.Now().UTC(),
	})
}

// GetProgress returns the fan's tier progress.
// GET /api/v1/fans/:id/progress.
func (h *Handler) GetProgress(c *gin.Context) {
	fanID, err := h.parseFanID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	progress, err := h.fanService.GetTierProgress(c.Request.Context(), fanID)
	if err != nil {
		h.handleError(c, err, fanID, "Failed to retrieve tier progress")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fan_id":       fanID,
		"progress":     progress,
		"generated_at": time.Now().UTC(),
	})
}

// GetStanding returns the fan's global rank.
// GET /api/v1/fans/:id/standing.
func (h *Handler) GetStanding(c *gin.Context) {
	fanID, err := h.parseFanID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	standing, err := h.leaderboardService.GetFanStanding(c.Request.Context(), fanID)
	if err != nil {
		if errors.Is(err, leaderboard.ErrFanNotRanked) {
			h.errorResponse(c, http.StatusNotFound, "Fan not found")
			return
		}
		h.log.Error().Err(err).Uint("fan_id", fanID).Msg("Failed to get fan standing")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve fan standing")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"standing":     standing,
		"generated_at": time.Now().UTC(),
	})
}

// GetTransactions returns the fan's newest transactions.
// GET /api/v1/fans/:id/transactions?limit=20.
func (h *Handler) GetTransactions(c *gin.Context) {
	fanID, err := h.parseFanID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := h.parseLimit(c, 20)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	txns, err := h.fanService.ListTransactions(c.Request.Context(), fanID, limit)
	if err != nil {
		h.handleError(c, err, fanID, "Failed to retrieve transactions")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fan_id":       fanID,
		"transactions": txns,
		"total":        len(txns),
		"generated_at": time.Now().UTC(),
	})
}

// GetContestEntries returns the contests the fan entered.
// GET /api/v1/fans/:id/contests.
func (h *Handler) GetContestEntries(c *gin.Context) {
	fanID, err := h.parseFanID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.fanService.ListContestEntries(c.Request.Context(), fanID)
	if err != nil {
		h.handleError(c, err, fanID, "Failed to retrieve contest entries")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fan_id":       fanID,
		"entries":      entries,
		"total":        len(entries),
		"generated_at": time.Now().UTC(),
	})
}

// EarnPoints credits points to a fan.
// POST /api/v1/fans/:id/points.
func (h *Handler) EarnPoints(c *gin.Context) {
	fanID, err := h.parseFanID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req EarnPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	out, err := h.fanService.EarnPoints(c.Request.Context(), fanID, req.Amount, req.Source, req.Description)
	if err != nil {
		h.handleError(c, err, fanID, "Failed to add points")
		return
	}

	h.outcomeResponse(c, http.StatusCreated, out)
}

// RedeemReward spends points on a reward.
// POST /api/v1/fans/:id/redemptions.
func (h *Handler) RedeemReward(c *gin.Context) {
	fanID, err := h.parseFanID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	out, err := h.fanService.RedeemReward(c.Request.Context(), fanID, req.RewardID)
	if err != nil {
		h.handleError(c, err, fanID, "Failed to redeem reward")
		return
	}

	h.outcomeResponse(c, http.StatusCreated, out)
}

// EnterContest enters a fan into a contest.
// POST /api/v1/fans/:id/contests/:contest_id/entries.
func (h *Handler) EnterContest(c *gin.Context) {
	fanID, err := h.parseFanID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.fanService.EnterContest(c.Request.Context(), fanID, c.Param("contest_id"))
	if err != nil {
		h.handleError(c, err, fanID, "Failed to enter contest")
		return
	}

	h.outcomeResponse(c, http.StatusCreated, out)
}

// ToggleSocial connects or disconnects a social platform.
// POST /api/v1/fans/:id/social/:platform/toggle.
func (h *Handler) ToggleSocial(c *gin.Context) {
	fanID, err := h.parseFanID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	platform := models.Platform(c.Param("platform"))
	out, err := h.fanService.ConnectSocialProfile(c.Request.Context(), fanID, platform)
	if err != nil {
		h.handleError(c, err, fanID, "Failed to update social profile")
		return
	}

	h.outcomeResponse(c, http.StatusOK, out)
}

// UpdateProfile applies a profile edit.
// PATCH /api/v1/fans/:id/profile.
func (h *Handler) UpdateProfile(c *gin.Context) {
	fanID, err := h.parseFanID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	out, err := h.fanService.UpdateProfile(c.Request.Context(), fanID, req.Action, req.Patch)
	if err != nil {
		h.handleError(c, err, fanID, "Failed to update profile")
		return
	}

	h.outcomeResponse(c, http.StatusOK, out)
}

// GetRewards returns the reward catalog.
// GET /api/v1/rewards.
func (h *Handler) GetRewards(c *gin.Context) {
	rewards, err := h.fanService.ListRewards(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get rewards")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve rewards")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rewards":      rewards,
		"total":        len(rewards),
		"generated_at": time.Now().UTC(),
	})
}

// GetContests returns the contest catalog.
// GET /api/v1/contests.
func (h *Handler) GetContests(c *gin.Context) {
	contests, err := h.fanService.ListContests(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get contests")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve contests")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contests":     contests,
		"total":        len(contests),
		"generated_at": time.Now().UTC(),
	})
}

// GetLeaderboard returns the top fans by points.
// GET /api/v1/leaderboard?limit=10.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit, err := h.parseLimit(c, leaderboard.DefaultLimit)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.leaderboardService.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get leaderboard")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve leaderboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard":   entries,
		"total_entries": len(entries),
		"generated_at":  time.Now().UTC(),
	})
}

// GetTierDistribution returns the number of fans in each tier.
// GET /api/v1/tiers.
func (h *Handler) GetTierDistribution(c *gin.Context) {
	dist, err := h.leaderboardService.GetTierDistribution(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get tier distribution")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve tier distribution")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tiers":        dist,
		"generated_at": time.Now().UTC(),
	})
}

// Helper functions

// parseFanID extracts and validates the fan ID from the URL.
func (h *Handler) parseFanID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid fan ID: %s", idStr)
	}
	return uint(id), nil
}

// parseLimit extracts and validates the limit query parameter.
func (h *Handler) parseLimit(c *gin.Context, defaultLimit int) (int, error) {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return defaultLimit, nil
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0, fmt.Errorf("invalid limit parameter: %s", limitStr)
	}

	if limit < 1 {
		return 0, fmt.Errorf("limit must be greater than 0")
	}

	if limit > leaderboard.MaxLimit {
		return 0, fmt.Errorf("limit cannot exceed %d", leaderboard.MaxLimit)
	}

	return limit, nil
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidDescription),
		errors.Is(err, ledger.ErrInvalidSource),
		errors.Is(err, ledger.ErrUnknownAction),
		errors.Is(err, ledger.ErrUnknownTier):
		return http.StatusBadRequest
	case errors.Is(err, fansvc.ErrFanNotFound),
		errors.Is(err, ledger.ErrRewardNotFound),
		errors.Is(err, ledger.ErrContestNotFound),
		errors.Is(err, ledger.ErrPlatformNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrInsufficientPoints),
		errors.Is(err, ledger.ErrTierMismatch),
		errors.Is(err, ledger.ErrRewardUnavailable):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// handleError writes the error response for a failed fan operation.
// Rejections carry their message; other failures are logged and hidden.
func (h *Handler) handleError(c *gin.Context, err error, fanID uint, message string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Uint("fan_id", fanID).Msg(message)
		h.errorResponse(c, status, message)
		return
	}

	h.log.Debug().Err(err).Uint("fan_id", fanID).Int("status", status).Msg("Request rejected")
	h.errorResponse(c, status, err.Error())
}

func (h *Handler) outcomeResponse(c *gin.Context, status int, out *fansvc.Outcome) {
	c.JSON(status, gin.H{
		"result":       out,
		"generated_at": time.Now().UTC(),
	})
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
