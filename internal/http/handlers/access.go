package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"dramabox_webapp/internal/repository"

	"github.com/gin-gonic/gin"
)

type EpisodeAccessRequest struct {
	TelegramID   int64 `json:"telegram_id"`
	EpisodeIndex *int  `json:"episode_index" binding:"required"`
}

// CheckEpisodeAccess answers whether the caller may watch the episode.
// telegram_id is optional: absent means an unauthenticated caller, who still
// gets the free-episode range.
func (h *Handler) CheckEpisodeAccess(c *gin.Context) {
	var req EpisodeAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.EpisodeIndex == nil || *req.EpisodeIndex < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "episode_index required"})
		return
	}

	d, err := h.Access.CheckEpisode(c.Request.Context(), req.TelegramID, *req.EpisodeIndex, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "access check failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"allowed": d.Allowed,
		"reason":  d.Reason,
	})
}

// SubscriptionCheck reports the caller's membership snapshot.
func (h *Handler) SubscriptionCheck(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid telegram_id"})
		return
	}

	state, err := h.Access.SubscriptionCheck(c.Request.Context(), telegramID, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, state)
}
