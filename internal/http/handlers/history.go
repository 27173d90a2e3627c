package handlers

import (
	"net/http"
	"strconv"

	"dramabox_webapp/internal/domain"

	"github.com/gin-gonic/gin"
)

type HistoryRequest struct {
	TelegramID    int64  `json:"telegram_id" binding:"required"`
	BookID        string `json:"book_id" binding:"required"`
	Title         string `json:"title"`
	CoverURL      string `json:"cover_url"`
	EpisodeNumber int    `json:"episode_number"`
}

// AddHistory upserts the watch marker for the (user, book) pair.
func (h *Handler) AddHistory(c *gin.Context) {
	var req HistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "telegram_id and book_id required"})
		return
	}

	if req.EpisodeNumber <= 0 {
		req.EpisodeNumber = 1
	}

	err := h.History.Upsert(c.Request.Context(), &domain.WatchHistory{
		TelegramID:    req.TelegramID,
		BookID:        req.BookID,
		Title:         req.Title,
		CoverURL:      req.CoverURL,
		EpisodeNumber: req.EpisodeNumber,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetHistory(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid telegram_id"})
		return
	}

	history, err := h.History.ListByUser(c.Request.Context(), telegramID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list history"})
		return
	}

	c.JSON(http.StatusOK, history)
}
