package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"dramabox_webapp/internal/domain"
	"dramabox_webapp/internal/logger"

	"github.com/gin-gonic/gin"
)

type ReportRequest struct {
	TelegramID  int64  `json:"telegram_id" binding:"required"`
	IssueType   string `json:"issue_type" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// SubmitReport stores the ticket and forwards it to the admin chat. The
// forward is best-effort: the ticket is already committed.
func (h *Handler) SubmitReport(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "telegram_id, issue_type and description required"})
		return
	}

	report := &domain.Report{
		TelegramID:  req.TelegramID,
		IssueType:   req.IssueType,
		Description: req.Description,
	}
	if err := h.Reports.Create(c.Request.Context(), report); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save report"})
		return
	}

	if h.Notifier != nil && h.Cfg.AdminTelegramID != 0 {
		text := fmt.Sprintf("📩 New Report\nFrom: %d\nType: %s\n\n%s",
			req.TelegramID, req.IssueType, req.Description)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := h.Notifier.Notify(ctx, h.Cfg.AdminTelegramID, text); err != nil {
				logger.Warn("report forward failed", "report_id", report.ID, "error", err)
			}
		}()
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
