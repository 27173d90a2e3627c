package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dramabox_webapp/internal/domain"
	"dramabox_webapp/internal/logger"
	"dramabox_webapp/internal/repository"
)

var ErrAmountBelowMinimum = errors.New("amount below minimum plan")

const (
	ActivationStatusOK               = "ok"
	ActivationStatusAlreadyProcessed = "already_processed"
)

type ActivationResult struct {
	Status    string     `json:"status"`
	Plan      string     `json:"plan,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// PayerMeta - платёжные реквизиты из колбэка, только для записи
type PayerMeta struct {
	DonatorName  string
	DonatorEmail string
}

type SubscriptionService struct {
	subs     *repository.SubscriptionRepository
	notifier Notifier
	adminID  int64
	plans    []domain.Plan
}

// NewSubscriptionService builds the plan table highest threshold first.
// minPlanAmount is the floor of the cheapest plan (5000 by default, one
// revision of the pricing used 3000).
func NewSubscriptionService(subs *repository.SubscriptionRepository, notifier Notifier, adminID int64, minPlanAmount int64) *SubscriptionService {
	return &SubscriptionService{
		subs:     subs,
		notifier: notifier,
		adminID:  adminID,
		plans: []domain.Plan{
			{Name: "1 Year VIP", MinAmount: 250000, Duration: 365 * 24 * time.Hour},
			{Name: "1 Month VIP", MinAmount: 35000, Duration: 30 * 24 * time.Hour},
			{Name: "2 Weeks VIP", MinAmount: 10000, Duration: 14 * 24 * time.Hour},
			{Name: "3 Days VIP", MinAmount: minPlanAmount, Duration: 3 * 24 * time.Hour},
		},
	}
}

// ResolvePlan matches a paid amount against the plan table, highest
// threshold first. Returns nil when the amount is below every plan.
func (s *SubscriptionService) ResolvePlan(amount int64) *domain.Plan {
	for i := range s.plans {
		if amount >= s.plans[i].MinAmount {
			return &s.plans[i]
		}
	}
	return nil
}

// Activate applies a payment exactly once per transaction id. The idempotent
// write lives in the repository; the service resolves the plan and notifies
// after commit.
func (s *SubscriptionService) Activate(ctx context.Context, txID string, telegramID int64, amount int64, meta PayerMeta, now time.Time) (*ActivationResult, error) {
	plan := s.ResolvePlan(amount)
	if plan == nil {
		return nil, ErrAmountBelowMinimum
	}
	expiresAt := now.Add(plan.Duration)

	inserted, err := s.subs.Activate(ctx, &domain.Subscription{
		TransactionID: txID,
		TelegramID:    telegramID,
		Plan:          plan.Name,
		Amount:        amount,
		DonatorName:   meta.DonatorName,
		DonatorEmail:  meta.DonatorEmail,
		Status:        domain.SubscriptionActive,
		ActivatedAt:   now,
		ExpiresAt:     &expiresAt,
	})
	if err != nil {
		return nil, err
	}
	if !inserted {
		return &ActivationResult{Status: ActivationStatusAlreadyProcessed}, nil
	}

	s.notifyActivation(telegramID, plan, amount, expiresAt)

	return &ActivationResult{Status: ActivationStatusOK, Plan: plan.Name, ExpiresAt: &expiresAt}, nil
}

// notifyActivation tells the subscriber and, when configured, the admin.
// Best-effort: the payment is already committed.
func (s *SubscriptionService) notifyActivation(telegramID int64, plan *domain.Plan, amount int64, expiresAt time.Time) {
	if s.notifier == nil {
		return
	}

	expires := expiresAt.Format("2 Jan 2006 15:04 MST")
	userText := fmt.Sprintf("✅ Pembayaran diterima!\n\nPaket: %s\nJumlah: Rp%d\nVIP aktif sampai %s.\nSelamat menonton! 🎬",
		plan.Name, amount, expires)
	adminText := fmt.Sprintf("💰 VIP baru\nUser: %d\nPaket: %s\nJumlah: Rp%d\nBerlaku sampai: %s",
		telegramID, plan.Name, amount, expires)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.notifier.Notify(ctx, telegramID, userText); err != nil {
			logger.Warn("subscriber notification failed", "telegram_id", telegramID, "error", err)
		}
		if s.adminID != 0 {
			if err := s.notifier.Notify(ctx, s.adminID, adminText); err != nil {
				logger.Warn("admin notification failed", "admin_id", s.adminID, "error", err)
			}
		}
	}()
}
