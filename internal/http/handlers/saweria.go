package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dramabox_webapp/internal/http/middleware"
	"dramabox_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

// SaweriaCallback - тело колбэка Saweria
type SaweriaCallback struct {
	ID           string      `json:"id"`
	AmountRaw    json.Number `json:"amount_raw"`
	DonatorName  string      `json:"donator_name"`
	DonatorEmail string      `json:"donator_email"`
	Message      string      `json:"message"`
}

// verifySaweriaSignature checks the Saweria-Callback-Signature header: hex
// HMAC-SHA256 of the raw body under the shared secret, compared in constant
// time.
func verifySaweriaSignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

// SaweriaWebhook processes a payment notification. The donation message must
// carry the subscriber's telegram id. Duplicate deliveries and sub-minimum
// amounts come back success-shaped so the provider does not retry them.
func (h *Handler) SaweriaWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		middleware.WebhookEvents.WithLabelValues("bad_body").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read body"})
		return
	}

	if h.Cfg.SaweriaSecret != "" {
		sig := c.GetHeader("Saweria-Callback-Signature")
		if sig == "" || !verifySaweriaSignature(h.Cfg.SaweriaSecret, body, sig) {
			middleware.WebhookEvents.WithLabelValues("bad_signature").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
	}

	var cb SaweriaCallback
	if err := json.Unmarshal(body, &cb); err != nil || cb.ID == "" {
		middleware.WebhookEvents.WithLabelValues("bad_body").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	amount, err := cb.AmountRaw.Int64()
	if err != nil {
		middleware.WebhookEvents.WithLabelValues("bad_amount").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	telegramID, err := strconv.ParseInt(strings.TrimSpace(cb.Message), 10, 64)
	if err != nil || telegramID <= 0 {
		middleware.WebhookEvents.WithLabelValues("bad_message").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "message must contain telegram id"})
		return
	}

	result, err := h.Activator.Activate(c.Request.Context(), cb.ID, telegramID, amount, service.PayerMeta{
		DonatorName:  cb.DonatorName,
		DonatorEmail: cb.DonatorEmail,
	}, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrAmountBelowMinimum) {
			// не ошибка для провайдера: донат просто меньше минимального плана
			middleware.WebhookEvents.WithLabelValues("rejected").Inc()
			c.JSON(http.StatusOK, gin.H{"status": "rejected", "reason": "amount_below_minimum"})
			return
		}
		middleware.WebhookEvents.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "activation failed"})
		return
	}

	middleware.WebhookEvents.WithLabelValues(result.Status).Inc()

	if result.Status == service.ActivationStatusAlreadyProcessed {
		// answer the retry with the original outcome
		if existing, err := h.Subscriptions.GetByTransactionID(c.Request.Context(), cb.ID); err == nil {
			result.Plan = existing.Plan
			result.ExpiresAt = existing.ExpiresAt
		}
	}

	c.JSON(http.StatusOK, result)
}
