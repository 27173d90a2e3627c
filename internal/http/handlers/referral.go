package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dramabox_webapp/internal/http/middleware"
	"dramabox_webapp/internal/repository"
	"dramabox_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

type ReferralRequest struct {
	TelegramID int64  `json:"telegram_id" binding:"required"`
	RefCode    string `json:"ref_code" binding:"required"`
}

// ApplyReferral links the caller to the referrer encoded in ref_code
// ("ref_<referrer_id>") and accrues the referrer's reward.
func (h *Handler) ApplyReferral(c *gin.Context) {
	var req ReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing params"})
		return
	}

	if !strings.HasPrefix(req.RefCode, "ref_") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ref code"})
		return
	}
	referrerID, err := strconv.ParseInt(strings.TrimPrefix(req.RefCode, "ref_"), 10, 64)
	if err != nil || referrerID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ref code"})
		return
	}

	result, err := h.Referrals.Apply(c.Request.Context(), referrerID, req.TelegramID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfReferral):
			middleware.ReferralEvents.WithLabelValues("self_referral").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot refer yourself"})
		case errors.Is(err, repository.ErrReferrerNotFound), errors.Is(err, repository.ErrReferredNotFound):
			middleware.ReferralEvents.WithLabelValues("not_found").Inc()
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			middleware.ReferralEvents.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply referral"})
		}
		return
	}

	middleware.ReferralEvents.WithLabelValues(result.Status).Inc()
	c.JSON(http.StatusOK, gin.H{
		"status":         result.Status,
		"referral_count": result.ReferralCount,
	})
}

// ReferralStatus reports the referrer's counters and how far the next reward
// thresholds are.
func (h *Handler) ReferralStatus(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid telegram_id"})
		return
	}

	user, err := h.Users.GetByTelegramID(c.Request.Context(), telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	cfg := h.Referrals.Config()
	c.JSON(http.StatusOK, gin.H{
		"referral_count":           user.ReferralCount,
		"points":                   user.Points,
		"referral_access_until":    user.ReferralAccessUntil,
		"remaining_to_daily_bonus": cfg.RemainingToStep(user.ReferralCount),
		"remaining_to_big_bonus":   cfg.RemainingToBig(user.ReferralCount),
		"referral_link":            "https://t.me/" + h.Cfg.BotUsername + "?start=ref_" + strconv.FormatInt(telegramID, 10),
	})
}
