package access

import (
	"testing"
	"time"

	"dramabox_webapp/internal/domain"
)

var testRules = Rules{FreeEpisodes: 10, AdminTelegramID: 777}

func vipUser(until *time.Time) *domain.User {
	return &domain.User{TelegramID: 1, Membership: domain.MembershipVIP, MembershipUntil: until}
}

func freeUser() *domain.User {
	return &domain.User{TelegramID: 1, Membership: domain.MembershipFree}
}

func TestEvaluate_Unauthenticated(t *testing.T) {
	now := time.Now()

	for idx := 0; idx < 10; idx++ {
		d := Evaluate(testRules, 0, nil, idx, now)
		if !d.Allowed || d.Reason != ReasonLoginRequired {
			t.Fatalf("episode %d: expected allowed login_required, got %+v", idx, d)
		}
	}

	d := Evaluate(testRules, 0, nil, 10, now)
	if d.Allowed {
		t.Fatalf("episode 10 must be locked for unauthenticated caller, got %+v", d)
	}
	if d.Reason != ReasonLoginRequired {
		t.Fatalf("expected reason login_required, got %s", d.Reason)
	}
}

func TestEvaluate_Admin(t *testing.T) {
	now := time.Now()

	// admin is allowed everywhere, even with no user row
	d := Evaluate(testRules, 777, nil, 999, now)
	if !d.Allowed || d.Reason != ReasonAdmin {
		t.Fatalf("expected admin allow, got %+v", d)
	}
}

func TestEvaluate_AdminNotConfigured(t *testing.T) {
	rules := Rules{FreeEpisodes: 10}
	now := time.Now()

	// zero admin id must not make telegram_id=0 shortcut to admin
	d := Evaluate(rules, 0, nil, 50, now)
	if d.Allowed || d.Reason != ReasonLoginRequired {
		t.Fatalf("expected login_required deny, got %+v", d)
	}
}

func TestEvaluate_UserNotFound(t *testing.T) {
	now := time.Now()

	d := Evaluate(testRules, 42, nil, 3, now)
	if !d.Allowed || d.Reason != ReasonUserNotFound {
		t.Fatalf("expected allowed user_not_found, got %+v", d)
	}

	d = Evaluate(testRules, 42, nil, 10, now)
	if d.Allowed {
		t.Fatalf("expected deny for premium episode, got %+v", d)
	}
}

func TestEvaluate_VIP(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)

	d := Evaluate(testRules, 1, vipUser(&future), 500, now)
	if !d.Allowed || d.Reason != ReasonVIP || d.Downgrade {
		t.Fatalf("expected vip allow without downgrade, got %+v", d)
	}

	// null expiry = unbounded
	d = Evaluate(testRules, 1, vipUser(nil), 500, now)
	if !d.Allowed || d.Reason != ReasonVIP {
		t.Fatalf("expected unbounded vip allow, got %+v", d)
	}
}

func TestEvaluate_ExpiredVIPDowngrades(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)

	d := Evaluate(testRules, 1, vipUser(&past), 500, now)
	if d.Allowed {
		t.Fatalf("expired vip must not unlock premium episode, got %+v", d)
	}
	if d.Reason != ReasonPremiumRequired {
		t.Fatalf("expected premium_required, got %s", d.Reason)
	}
	if !d.Downgrade {
		t.Fatalf("expected downgrade flag for expired vip")
	}

	// expired vip still gets free episodes, with downgrade flagged
	d = Evaluate(testRules, 1, vipUser(&past), 2, now)
	if !d.Allowed || d.Reason != ReasonFreeEpisode || !d.Downgrade {
		t.Fatalf("expected free_episode allow with downgrade, got %+v", d)
	}
}

func TestEvaluate_ExpiredVIPFallsThroughToReferralAccess(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	u := vipUser(&past)
	u.ReferralAccessUntil = &future

	d := Evaluate(testRules, 1, u, 500, now)
	if !d.Allowed || d.Reason != ReasonReferralAccess {
		t.Fatalf("expected referral_access allow, got %+v", d)
	}
	if !d.Downgrade {
		t.Fatalf("downgrade must still be flagged")
	}
}

func TestEvaluate_ReferralAccess(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	u := freeUser()
	u.ReferralAccessUntil = &future
	d := Evaluate(testRules, 1, u, 500, now)
	if !d.Allowed || d.Reason != ReasonReferralAccess {
		t.Fatalf("expected referral_access allow, got %+v", d)
	}

	u.ReferralAccessUntil = &past
	d = Evaluate(testRules, 1, u, 500, now)
	if d.Allowed {
		t.Fatalf("expired referral access must not unlock, got %+v", d)
	}
}

func TestEvaluate_FreeEpisodeBoundary(t *testing.T) {
	now := time.Now()

	d := Evaluate(testRules, 1, freeUser(), 9, now)
	if !d.Allowed || d.Reason != ReasonFreeEpisode {
		t.Fatalf("episode 9 must be free, got %+v", d)
	}

	d = Evaluate(testRules, 1, freeUser(), 10, now)
	if d.Allowed || d.Reason != ReasonPremiumRequired {
		t.Fatalf("episode 10 must require premium, got %+v", d)
	}
}
