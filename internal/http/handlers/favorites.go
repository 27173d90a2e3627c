package handlers

import (
	"net/http"
	"strconv"

	"dramabox_webapp/internal/domain"

	"github.com/gin-gonic/gin"
)

type FavoriteRequest struct {
	TelegramID int64  `json:"telegram_id" binding:"required"`
	BookID     string `json:"book_id" binding:"required"`
	Title      string `json:"title"`
	CoverURL   string `json:"cover_url"`
}

func (h *Handler) AddFavorite(c *gin.Context) {
	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "telegram_id and book_id required"})
		return
	}

	err := h.Favorites.Add(c.Request.Context(), &domain.Favorite{
		TelegramID: req.TelegramID,
		BookID:     req.BookID,
		Title:      req.Title,
		CoverURL:   req.CoverURL,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add favorite"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetFavorites(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid telegram_id"})
		return
	}

	favorites, err := h.Favorites.ListByUser(c.Request.Context(), telegramID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list favorites"})
		return
	}

	c.JSON(http.StatusOK, favorites)
}

type RemoveFavoriteRequest struct {
	TelegramID int64  `json:"telegram_id" binding:"required"`
	BookID     string `json:"book_id" binding:"required"`
}

func (h *Handler) RemoveFavorite(c *gin.Context) {
	var req RemoveFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "telegram_id and book_id required"})
		return
	}

	if err := h.Favorites.Remove(c.Request.Context(), req.TelegramID, req.BookID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove favorite"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
