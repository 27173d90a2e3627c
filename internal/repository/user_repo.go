package repository

import (
	"context"
	"errors"
	"time"

	"dramabox_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

const userColumns = `telegram_id, COALESCE(username, ''), COALESCE(first_name, ''), COALESCE(last_name, ''),
	COALESCE(avatar_url, ''), membership, membership_until, points, referral_count, referred_by,
	COALESCE(language, 'id'), notifications_enabled, referral_access_until, created_at`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.TelegramID,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.AvatarURL,
		&u.Membership,
		&u.MembershipUntil,
		&u.Points,
		&u.ReferralCount,
		&u.ReferredBy,
		&u.Language,
		&u.NotificationsEnabled,
		&u.ReferralAccessUntil,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE telegram_id = $1`,
		telegramID,
	)
	return scanUser(row)
}

// Upsert creates the user on first contact and refreshes profile fields on
// every later sync. Membership, points and referral fields are never touched
// here.
func (r *UserRepository) Upsert(ctx context.Context, u *domain.User) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO users (telegram_id, username, first_name, last_name, avatar_url)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (telegram_id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			avatar_url = EXCLUDED.avatar_url
		 RETURNING `+userColumns,
		u.TelegramID, u.Username, u.FirstName, u.LastName, u.AvatarURL,
	)
	return scanUser(row)
}

// DowngradeExpired flips a stale VIP row to free. The WHERE clause repeats the
// expiry condition so concurrent checks cannot downgrade a membership that was
// extended in between.
func (r *UserRepository) DowngradeExpired(ctx context.Context, telegramID int64, now time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET membership = $1, membership_until = NULL
		 WHERE telegram_id = $2 AND membership = $3
		   AND membership_until IS NOT NULL AND membership_until <= $4`,
		domain.MembershipFree, telegramID, domain.MembershipVIP, now,
	)
	return err
}

func (r *UserRepository) SetLanguage(ctx context.Context, telegramID int64, lang string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET language = $1 WHERE telegram_id = $2`,
		lang, telegramID,
	)
	return err
}

func (r *UserRepository) SetNotifications(ctx context.Context, telegramID int64, enabled bool) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET notifications_enabled = $1 WHERE telegram_id = $2`,
		enabled, telegramID,
	)
	return err
}

// Stats - сводка для админ-бота
type Stats struct {
	TotalUsers     int64 `json:"total_users"`
	VIPUsers       int64 `json:"vip_users"`
	TotalReferrals int64 `json:"total_referrals"`
}

func (r *UserRepository) GetStats(ctx context.Context, now time.Time) (*Stats, error) {
	var s Stats
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE membership = $1 AND (membership_until IS NULL OR membership_until > $2)),
		       COALESCE(SUM(referral_count), 0)
		FROM users`,
		domain.MembershipVIP, now,
	).Scan(&s.TotalUsers, &s.VIPUsers, &s.TotalReferrals)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
