package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrReferrerNotFound = errors.New("referrer not found")
	ErrReferredNotFound = errors.New("referred user not found")
)

// ReferralLink is the outcome of ApplyReferral. Linked is false when the
// referred user already had a referrer; ReferralCount carries the referrer's
// current count in both cases.
type ReferralLink struct {
	Linked        bool
	ReferralCount int
}

type ReferralRepository struct {
	db *pgxpool.Pool
}

func NewReferralRepository(db *pgxpool.Pool) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// ApplyReferral links referred to referrer and accrues points, all in one
// transaction. The referral_logs uniqueness constraint closes the race between
// concurrent deliveries of the same event: whichever insert loses the conflict
// sees zero affected rows and reports Linked=false without touching the
// counters. grantFor maps the referrer's new count to an access window, nil
// for no grant.
func (r *ReferralRepository) ApplyReferral(ctx context.Context, referrerID, referredID int64, points int, grantFor func(newCount int) *time.Time) (*ReferralLink, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Блокируем обе строки на время транзакции
	var referredBy *int64
	err = tx.QueryRow(ctx,
		`SELECT referred_by FROM users WHERE telegram_id = $1 FOR UPDATE`,
		referredID,
	).Scan(&referredBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReferredNotFound
		}
		return nil, err
	}
	if referredBy != nil {
		var count int
		err := tx.QueryRow(ctx,
			`SELECT referral_count FROM users WHERE telegram_id = $1`,
			referrerID,
		).Scan(&count)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return &ReferralLink{ReferralCount: count}, nil
	}

	var count int
	err = tx.QueryRow(ctx,
		`SELECT referral_count FROM users WHERE telegram_id = $1 FOR UPDATE`,
		referrerID,
	).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReferrerNotFound
		}
		return nil, err
	}

	inserted, err := tx.Exec(ctx,
		`INSERT INTO referral_logs (referrer_id, referred_id)
		 VALUES ($1, $2)
		 ON CONFLICT (referrer_id, referred_id) DO NOTHING`,
		referrerID, referredID,
	)
	if err != nil {
		return nil, err
	}
	if inserted.RowsAffected() == 0 {
		// at-least-once delivery of the same event, already counted
		return &ReferralLink{ReferralCount: count}, nil
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET referred_by = $1 WHERE telegram_id = $2`,
		referrerID, referredID,
	); err != nil {
		return nil, err
	}

	var newCount int
	err = tx.QueryRow(ctx,
		`UPDATE users SET referral_count = referral_count + 1, points = points + $1
		 WHERE telegram_id = $2
		 RETURNING referral_count`,
		points, referrerID,
	).Scan(&newCount)
	if err != nil {
		return nil, err
	}

	if until := grantFor(newCount); until != nil {
		if _, err := tx.Exec(ctx,
			`UPDATE users SET referral_access_until = $1 WHERE telegram_id = $2`,
			until, referrerID,
		); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &ReferralLink{Linked: true, ReferralCount: newCount}, nil
}
