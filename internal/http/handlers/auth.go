package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"dramabox_webapp/internal/domain"
	"dramabox_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthRequest struct {
	InitData string `json:"init_data"`
}

// Auth validates Telegram WebApp init_data, upserts the profile and issues a
// session token.
func (h *Handler) Auth(c *gin.Context) {
	var req AuthRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	if len(req.InitData) > 4096 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "init_data too long"})
		return
	}

	values, ok := service.ValidateTelegramInitData(req.InitData, h.Cfg.BotToken)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or stale telegram data"})
		return
	}

	userRaw := values.Get("user")
	if userRaw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user not found"})
		return
	}

	userValues, _ := url.ParseQuery("user=" + userRaw)
	userJSON := userValues.Get("user")

	var tgUser struct {
		ID        int64  `json:"id"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	if err := json.Unmarshal([]byte(userJSON), &tgUser); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user json"})
		return
	}

	user, err := h.Users.Upsert(c.Request.Context(), &domain.User{
		TelegramID: tgUser.ID,
		Username:   tgUser.Username,
		FirstName:  tgUser.FirstName,
		LastName:   tgUser.LastName,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	token, err := service.GenerateJWT(user.TelegramID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *gin.Context) {
	telegramID, ok := getTelegramID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.Users.GetByTelegramID(c.Request.Context(), telegramID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}
