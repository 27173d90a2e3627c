package domain

import "time"

// Membership - уровень подписки пользователя
type Membership string

const (
	MembershipFree Membership = "free"
	MembershipVIP  Membership = "vip"
)

type User struct {
	TelegramID           int64      `db:"telegram_id" json:"telegram_id"`
	Username             string     `db:"username" json:"username"`
	FirstName            string     `db:"first_name" json:"first_name"`
	LastName             string     `db:"last_name" json:"last_name"`
	AvatarURL            string     `db:"avatar_url" json:"avatar_url"`
	Membership           Membership `db:"membership" json:"membership"`
	MembershipUntil      *time.Time `db:"membership_until" json:"membership_until,omitempty"`
	Points               int64      `db:"points" json:"points"`
	ReferralCount        int        `db:"referral_count" json:"referral_count"`
	ReferredBy           *int64     `db:"referred_by" json:"referred_by,omitempty"`
	Language             string     `db:"language" json:"language"`
	NotificationsEnabled bool       `db:"notifications_enabled" json:"notifications_enabled"`
	ReferralAccessUntil  *time.Time `db:"referral_access_until" json:"referral_access_until,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
}

// IsVIP reports whether the stored membership is VIP and not yet expired.
// A nil MembershipUntil means the membership is unbounded.
func (u *User) IsVIP(now time.Time) bool {
	if u.Membership != MembershipVIP {
		return false
	}
	return u.MembershipUntil == nil || u.MembershipUntil.After(now)
}

// HasReferralAccess reports whether a referral-granted access window is active.
func (u *User) HasReferralAccess(now time.Time) bool {
	return u.ReferralAccessUntil != nil && u.ReferralAccessUntil.After(now)
}
