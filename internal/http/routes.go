package http

import (
	"os"
	"strconv"
	"time"

	"dramabox_webapp/internal/config"
	"dramabox_webapp/internal/http/handlers"
	"dramabox_webapp/internal/http/middleware"
	"dramabox_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes wires all HTTP endpoints. The notifier may be nil when the
// bot is disabled; side-channel messages are then skipped.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config, notifier service.Notifier, version string) *handlers.HealthHandler {
	h := handlers.NewHandler(db, cfg, notifier)
	healthHandler := handlers.NewHealthHandler(db, version)

	// read limits from env, with safe defaults
	apiRateLimit := 60
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateLimit = n
		}
	}
	apiRateWindow := time.Minute
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateWindow = time.Duration(n) * time.Second
		}
	}

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Liveness)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	// Payment provider callback: no rate limit, signature-gated instead
	r.POST("/webhook/saweria", h.SaweriaWebhook)

	api := r.Group("/api")
	api.Use(middleware.RedisRateLimit(apiRateLimit, apiRateWindow))

	// Session auth for the mini-app
	api.POST("/auth", h.Auth)
	api.GET("/me", middleware.JWT(), h.Me)

	// Profile sync (called by the bot on /start)
	api.POST("/user", h.UpsertUser)
	api.GET("/user/:telegram_id", h.GetUser)
	api.POST("/user/settings", h.UpdateSettings)

	// Favorites
	api.POST("/favorites", h.AddFavorite)
	api.GET("/favorites/:telegram_id", h.GetFavorites)
	api.DELETE("/favorites", h.RemoveFavorite)

	// Watch history
	api.POST("/history", h.AddHistory)
	api.GET("/history/:telegram_id", h.GetHistory)

	// Reports
	api.POST("/report", h.SubmitReport)

	// Referral system
	api.POST("/referral", h.ApplyReferral)
	api.GET("/referral/status/:telegram_id", h.ReferralStatus)

	// Entitlement and payments
	api.POST("/episode/access", h.CheckEpisodeAccess)
	api.GET("/subscription/check/:telegram_id", h.SubscriptionCheck)
	api.GET("/subscriptions/:telegram_id", h.ListSubscriptions)

	// Drama catalog proxy
	api.GET("/proxy/*endpoint", h.CatalogProxy)

	return healthHandler
}
