package service

import (
	"context"
	"errors"
	"time"

	"dramabox_webapp/internal/access"
	"dramabox_webapp/internal/domain"
	"dramabox_webapp/internal/logger"
	"dramabox_webapp/internal/repository"
)

// AccessService wraps the pure evaluator with the store read and the lazy
// downgrade write.
type AccessService struct {
	users *repository.UserRepository
	rules access.Rules
}

func NewAccessService(users *repository.UserRepository, rules access.Rules) *AccessService {
	return &AccessService{users: users, rules: rules}
}

// CheckEpisode evaluates access for one episode. telegramID zero means the
// caller is unauthenticated.
func (s *AccessService) CheckEpisode(ctx context.Context, telegramID int64, episodeIndex int, now time.Time) (access.Decision, error) {
	var user *domain.User
	if telegramID != 0 {
		u, err := s.users.GetByTelegramID(ctx, telegramID)
		if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return access.Decision{}, err
		}
		user = u // nil, если не найден
	}

	d := access.Evaluate(s.rules, telegramID, user, episodeIndex, now)

	if d.Downgrade {
		// Lazy expiry: the stored tier stays VIP until a check lands here.
		if err := s.users.DowngradeExpired(ctx, telegramID, now); err != nil {
			logger.Warn("lazy downgrade failed", "telegram_id", telegramID, "error", err)
		}
	}

	return d, nil
}

// SubscriptionState - снимок членства для GET /api/subscription/check
type SubscriptionState struct {
	Membership          domain.Membership `json:"membership"`
	IsActive            bool              `json:"is_active"`
	HasReferralAccess   bool              `json:"has_referral_access"`
	ExpiresAt           *time.Time        `json:"expires_at"`
	ReferralAccessUntil *time.Time        `json:"referral_access_expires_at"`
}

// SubscriptionCheck reports the membership snapshot, applying the same lazy
// downgrade as an access check would.
func (s *AccessService) SubscriptionCheck(ctx context.Context, telegramID int64, now time.Time) (*SubscriptionState, error) {
	u, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	if u.Membership == domain.MembershipVIP && !u.IsVIP(now) {
		if err := s.users.DowngradeExpired(ctx, telegramID, now); err != nil {
			logger.Warn("lazy downgrade failed", "telegram_id", telegramID, "error", err)
		}
		u.Membership = domain.MembershipFree
		u.MembershipUntil = nil
	}

	return &SubscriptionState{
		Membership:          u.Membership,
		IsActive:            u.IsVIP(now),
		HasReferralAccess:   u.HasReferralAccess(now),
		ExpiresAt:           u.MembershipUntil,
		ReferralAccessUntil: u.ReferralAccessUntil,
	}, nil
}
