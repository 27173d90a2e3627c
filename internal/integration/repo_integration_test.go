package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dramabox_webapp/internal/access"
	"dramabox_webapp/internal/domain"
	"dramabox_webapp/internal/repository"
	"dramabox_webapp/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

func openDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	applyMigrations(t, db)
	return db
}

func applyMigrations(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "..", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
}

func wipeUsers(t *testing.T, db *pgxpool.Pool, ids ...int64) {
	t.Helper()
	ctx := context.Background()
	for _, q := range []string{
		`DELETE FROM referral_logs WHERE referrer_id = ANY($1) OR referred_id = ANY($1)`,
		`DELETE FROM subscriptions WHERE telegram_id = ANY($1)`,
		`DELETE FROM users WHERE telegram_id = ANY($1)`,
	} {
		if _, err := db.Exec(ctx, q, ids); err != nil {
			t.Fatalf("wipe: %v", err)
		}
	}
}

func insertUser(t *testing.T, db *pgxpool.Pool, id int64) {
	t.Helper()
	if _, err := db.Exec(context.Background(),
		`INSERT INTO users (telegram_id) VALUES ($1)`, id,
	); err != nil {
		t.Fatalf("insert user %d: %v", id, err)
	}
}

func testRefCfg() service.ReferralConfig {
	return service.ReferralConfig{
		Step:    3,
		Big:     10,
		StepDur: 24 * time.Hour,
		BigDur:  14 * 24 * time.Hour,
	}
}

// A second delivery of the same referral must report already_referred and
// leave the referrer's counters at a single increment.
func TestReferralApply_SecondDeliveryCountsOnce(t *testing.T) {
	db := openDB(t)
	const referrer, referred int64 = 910001, 910002
	wipeUsers(t, db, referrer, referred)
	insertUser(t, db, referrer)
	insertUser(t, db, referred)

	svc := service.NewReferralService(repository.NewReferralRepository(db), nil, testRefCfg())
	ctx := context.Background()
	now := time.Now()

	first, err := svc.Apply(ctx, referrer, referred, now)
	if err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if first.Status != service.ReferralStatusOK || first.ReferralCount != 1 {
		t.Fatalf("first apply: got %q count %d", first.Status, first.ReferralCount)
	}

	second, err := svc.Apply(ctx, referrer, referred, now)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if second.Status != service.ReferralStatusAlreadyReferred {
		t.Fatalf("second apply: got %q, want already_referred", second.Status)
	}
	if second.ReferralCount != 1 {
		t.Fatalf("second apply count: got %d, want 1", second.ReferralCount)
	}

	u, err := repository.NewUserRepository(db).GetByTelegramID(ctx, referrer)
	if err != nil {
		t.Fatalf("read referrer: %v", err)
	}
	if u.ReferralCount != 1 {
		t.Fatalf("stored referral_count: got %d, want 1", u.ReferralCount)
	}
	if u.Points != 100 {
		t.Fatalf("stored points: got %d, want 100", u.Points)
	}
}

// Replaying a transaction id must not rewrite the membership, even when the
// duplicate carries a bigger amount.
func TestActivate_DuplicateTransactionKeepsMembership(t *testing.T) {
	db := openDB(t)
	const payer int64 = 910003
	const txID = "it-dup-tx-910003"
	wipeUsers(t, db, payer)

	svc := service.NewSubscriptionService(repository.NewSubscriptionRepository(db), nil, 0, 5000)
	ctx := context.Background()
	now := time.Now()

	first, err := svc.Activate(ctx, txID, payer, 35000, service.PayerMeta{}, now)
	if err != nil {
		t.Fatalf("first activate: %v", err)
	}
	if first.Status != service.ActivationStatusOK {
		t.Fatalf("first activate: got %q", first.Status)
	}

	second, err := svc.Activate(ctx, txID, payer, 250000, service.PayerMeta{}, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("second activate: %v", err)
	}
	if second.Status != service.ActivationStatusAlreadyProcessed {
		t.Fatalf("second activate: got %q, want already_processed", second.Status)
	}

	u, err := repository.NewUserRepository(db).GetByTelegramID(ctx, payer)
	if err != nil {
		t.Fatalf("read payer: %v", err)
	}
	if u.Membership != domain.MembershipVIP {
		t.Fatalf("membership: got %q, want vip", u.Membership)
	}
	if u.MembershipUntil == nil {
		t.Fatalf("membership_until not set")
	}
	// the 30-day plan stands; the replayed 1-year amount must not extend it
	if u.MembershipUntil.After(now.Add(31 * 24 * time.Hour)) {
		t.Fatalf("membership_until extended by duplicate: %v", u.MembershipUntil)
	}
}

// The lazy downgrade of an expired VIP must be durable: the second read sees
// the free tier in the store, not just in the decision.
func TestExpiredVIP_DowngradeIsDurable(t *testing.T) {
	db := openDB(t)
	const id int64 = 910004
	wipeUsers(t, db, id)

	ctx := context.Background()
	expired := time.Now().Add(-time.Hour)
	if _, err := db.Exec(ctx,
		`INSERT INTO users (telegram_id, membership, membership_until) VALUES ($1, 'vip', $2)`,
		id, expired,
	); err != nil {
		t.Fatalf("insert expired vip: %v", err)
	}

	users := repository.NewUserRepository(db)
	svc := service.NewAccessService(users, access.Rules{FreeEpisodes: 10})

	d, err := svc.CheckEpisode(ctx, id, 11, time.Now())
	if err != nil {
		t.Fatalf("check episode: %v", err)
	}
	if d.Allowed || d.Reason != access.ReasonPremiumRequired {
		t.Fatalf("expired vip decision: allowed=%v reason=%q", d.Allowed, d.Reason)
	}

	u, err := users.GetByTelegramID(ctx, id)
	if err != nil {
		t.Fatalf("read user: %v", err)
	}
	if u.Membership != domain.MembershipFree {
		t.Fatalf("stored membership after check: got %q, want free", u.Membership)
	}
	if u.MembershipUntil != nil {
		t.Fatalf("membership_until not cleared: %v", u.MembershipUntil)
	}

	d2, err := svc.CheckEpisode(ctx, id, 11, time.Now())
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if d2.Reason != access.ReasonPremiumRequired || d2.Downgrade {
		t.Fatalf("second check: reason=%q downgrade=%v", d2.Reason, d2.Downgrade)
	}
}
