package handlers

import (
	"dramabox_webapp/internal/access"
	"dramabox_webapp/internal/config"
	"dramabox_webapp/internal/repository"
	"dramabox_webapp/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB  *pgxpool.Pool
	Cfg *config.Config

	Users         *repository.UserRepository
	Favorites     *repository.FavoriteRepository
	History       *repository.HistoryRepository
	Reports       *repository.ReportRepository
	Subscriptions *repository.SubscriptionRepository

	Access    *service.AccessService
	Referrals *service.ReferralService
	Activator *service.SubscriptionService

	Notifier service.Notifier
}

func NewHandler(db *pgxpool.Pool, cfg *config.Config, notifier service.Notifier) *Handler {
	users := repository.NewUserRepository(db)

	rules := access.Rules{
		FreeEpisodes:    cfg.FreeEpisodes,
		AdminTelegramID: cfg.AdminTelegramID,
	}
	refCfg := service.ReferralConfig{
		Step:    cfg.ReferralStep,
		Big:     cfg.ReferralBig,
		StepDur: cfg.ReferralStepDur,
		BigDur:  cfg.ReferralBigDur,
	}

	subs := repository.NewSubscriptionRepository(db)

	return &Handler{
		DB:  db,
		Cfg: cfg,

		Users:         users,
		Favorites:     repository.NewFavoriteRepository(db),
		History:       repository.NewHistoryRepository(db),
		Reports:       repository.NewReportRepository(db),
		Subscriptions: subs,

		Access:    service.NewAccessService(users, rules),
		Referrals: service.NewReferralService(repository.NewReferralRepository(db), notifier, refCfg),
		Activator: service.NewSubscriptionService(subs, notifier, cfg.AdminTelegramID, cfg.MinPlanAmount),

		Notifier: notifier,
	}
}

// getTelegramID извлекает telegram_id из контекста Gin
func getTelegramID(c interface{ Get(string) (any, bool) }) (int64, bool) {
	idVal, ok := c.Get("telegram_id")
	if !ok {
		return 0, false
	}
	switch v := idVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
