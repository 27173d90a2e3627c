package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"dramabox_webapp/internal/domain"
	"dramabox_webapp/internal/repository"

	"github.com/gin-gonic/gin"
)

type UpsertUserRequest struct {
	TelegramID int64  `json:"telegram_id" binding:"required"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	AvatarURL  string `json:"avatar_url"`
}

// UpsertUser registers a user on first contact and refreshes the profile on
// every later sync. The bot calls this on /start.
func (h *Handler) UpsertUser(c *gin.Context) {
	var req UpsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "telegram_id required"})
		return
	}

	user, err := h.Users.Upsert(c.Request.Context(), &domain.User{
		TelegramID: req.TelegramID,
		Username:   req.Username,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		AvatarURL:  req.AvatarURL,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upsert user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

type SettingsRequest struct {
	TelegramID           int64   `json:"telegram_id" binding:"required"`
	Language             *string `json:"language"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
}

// UpdateSettings changes the preferred language and/or the notification
// toggle. Absent fields stay untouched.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "telegram_id required"})
		return
	}

	ctx := c.Request.Context()
	if req.Language != nil {
		if err := h.Users.SetLanguage(ctx, req.TelegramID, *req.Language); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update language"})
			return
		}
	}
	if req.NotificationsEnabled != nil {
		if err := h.Users.SetNotifications(ctx, req.TelegramID, *req.NotificationsEnabled); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update notifications"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetUser(c *gin.Context) {
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

	c.JSON(http.StatusOK, user)
}
