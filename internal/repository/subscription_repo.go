package repository

import (
	"context"

	"dramabox_webapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Activate records the payment and flips the user's membership in one
// transaction. The unique constraint on transaction_id is the idempotency
// guard: a duplicate delivery loses the ON CONFLICT race inside the same
// transaction that would write the membership, so no partial state can leak.
// Returns false when the transaction id was seen before (nothing written).
func (r *SubscriptionRepository) Activate(ctx context.Context, sub *domain.Subscription) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	inserted, err := tx.Exec(ctx,
		`INSERT INTO subscriptions (transaction_id, telegram_id, plan, amount, donator_name, donator_email, status, activated_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (transaction_id) DO NOTHING`,
		sub.TransactionID, sub.TelegramID, sub.Plan, sub.Amount,
		sub.DonatorName, sub.DonatorEmail, sub.Status, sub.ActivatedAt, sub.ExpiresAt,
	)
	if err != nil {
		return false, err
	}
	if inserted.RowsAffected() == 0 {
		return false, nil
	}

	// Плановая дата перезаписывает прежнюю: продления не суммируются.
	// The upsert also covers payments from ids the bot has never seen.
	if _, err := tx.Exec(ctx,
		`INSERT INTO users (telegram_id, membership, membership_until)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (telegram_id) DO UPDATE SET
			membership = EXCLUDED.membership,
			membership_until = EXCLUDED.membership_until`,
		sub.TelegramID, domain.MembershipVIP, sub.ExpiresAt,
	); err != nil {
		return false, err
	}

	return true, tx.Commit(ctx)
}

func (r *SubscriptionRepository) GetByTransactionID(ctx context.Context, txID string) (*domain.Subscription, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, transaction_id, telegram_id, plan, amount, COALESCE(donator_name, ''),
		        COALESCE(donator_email, ''), status, activated_at, expires_at
		 FROM subscriptions
		 WHERE transaction_id = $1`,
		txID,
	)

	var s domain.Subscription
	if err := row.Scan(
		&s.ID, &s.TransactionID, &s.TelegramID, &s.Plan, &s.Amount,
		&s.DonatorName, &s.DonatorEmail, &s.Status, &s.ActivatedAt, &s.ExpiresAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubscriptionRepository) ListByUser(ctx context.Context, telegramID int64) ([]domain.Subscription, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, transaction_id, telegram_id, plan, amount, COALESCE(donator_name, ''),
		        COALESCE(donator_email, ''), status, activated_at, expires_at
		 FROM subscriptions
		 WHERE telegram_id = $1
		 ORDER BY activated_at DESC`,
		telegramID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []domain.Subscription{}
	for rows.Next() {
		var s domain.Subscription
		if err := rows.Scan(
			&s.ID, &s.TransactionID, &s.TelegramID, &s.Plan, &s.Amount,
			&s.DonatorName, &s.DonatorEmail, &s.Status, &s.ActivatedAt, &s.ExpiresAt,
		); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// TotalRevenue sums all processed payments (for the admin bot /stats command).
func (r *SubscriptionRepository) TotalRevenue(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM subscriptions`).Scan(&total)
	return total, err
}
