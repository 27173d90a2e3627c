package domain

import "time"

// SubscriptionStatus - статус платёжной записи
type SubscriptionStatus string

const (
	SubscriptionActive SubscriptionStatus = "active"
)

// Subscription is one processed payment. transaction_id is the idempotency key:
// a record is written at most once per external transaction and never mutated.
type Subscription struct {
	ID            int64              `db:"id" json:"id"`
	TransactionID string             `db:"transaction_id" json:"transaction_id"`
	TelegramID    int64              `db:"telegram_id" json:"telegram_id"`
	Plan          string             `db:"plan" json:"plan"`
	Amount        int64              `db:"amount" json:"amount"`
	DonatorName   string             `db:"donator_name" json:"donator_name"`
	DonatorEmail  string             `db:"donator_email" json:"donator_email"`
	Status        SubscriptionStatus `db:"status" json:"status"`
	ActivatedAt   time.Time          `db:"activated_at" json:"activated_at"`
	ExpiresAt     *time.Time         `db:"expires_at" json:"expires_at,omitempty"`
}

// Plan maps a paid amount to a VIP duration.
type Plan struct {
	Name      string
	MinAmount int64
	Duration  time.Duration
}
