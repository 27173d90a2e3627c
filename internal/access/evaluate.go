package access

import (
	"time"

	"dramabox_webapp/internal/domain"
)

// Reason explains an access decision.
type Reason string

const (
	ReasonLoginRequired   Reason = "login_required"
	ReasonAdmin           Reason = "admin"
	ReasonUserNotFound    Reason = "user_not_found"
	ReasonVIP             Reason = "vip"
	ReasonReferralAccess  Reason = "referral_access"
	ReasonFreeEpisode     Reason = "free_episode"
	ReasonPremiumRequired Reason = "premium_required"
)

// Rules - пороги доступа
type Rules struct {
	FreeEpisodes    int
	AdminTelegramID int64
}

type Decision struct {
	Allowed bool
	Reason  Reason
	// Downgrade is set when the stored membership says VIP but the expiry has
	// passed. The caller must flip the stored tier to free (lazy expiry): the
	// row stays stale until the next check touches it.
	Downgrade bool
}

// Evaluate decides whether episodeIndex (zero-based) is viewable. telegramID
// is zero for unauthenticated callers; user is nil when the id is not in the
// store. Pure function of its arguments, first matching rule wins.
func Evaluate(rules Rules, telegramID int64, user *domain.User, episodeIndex int, now time.Time) Decision {
	free := episodeIndex < rules.FreeEpisodes

	if telegramID == 0 {
		return Decision{Allowed: free, Reason: ReasonLoginRequired}
	}

	if rules.AdminTelegramID != 0 && telegramID == rules.AdminTelegramID {
		return Decision{Allowed: true, Reason: ReasonAdmin}
	}

	if user == nil {
		return Decision{Allowed: free, Reason: ReasonUserNotFound}
	}

	var downgrade bool
	if user.Membership == domain.MembershipVIP {
		if user.IsVIP(now) {
			return Decision{Allowed: true, Reason: ReasonVIP}
		}
		// VIP с истёкшим сроком: помечаем на даунгрейд и продолжаем
		downgrade = true
	}

	if user.HasReferralAccess(now) {
		return Decision{Allowed: true, Reason: ReasonReferralAccess, Downgrade: downgrade}
	}

	if free {
		return Decision{Allowed: true, Reason: ReasonFreeEpisode, Downgrade: downgrade}
	}

	return Decision{Allowed: false, Reason: ReasonPremiumRequired, Downgrade: downgrade}
}
