package service

import "testing"

func TestResolvePlan_AmountMapping(t *testing.T) {
	s := NewSubscriptionService(nil, nil, 0, 5000)

	cases := []struct {
		amount int64
		plan   string // "" = rejected
	}{
		{0, ""},
		{4999, ""},
		{5000, "3 Days VIP"},
		{9999, "3 Days VIP"},
		{10000, "2 Weeks VIP"},
		{34999, "2 Weeks VIP"},
		{35000, "1 Month VIP"},
		{249999, "1 Month VIP"},
		{250000, "1 Year VIP"},
		{1000000, "1 Year VIP"},
	}

	for _, tc := range cases {
		p := s.ResolvePlan(tc.amount)
		if tc.plan == "" {
			if p != nil {
				t.Fatalf("amount %d: expected rejection, got plan %q", tc.amount, p.Name)
			}
			continue
		}
		if p == nil {
			t.Fatalf("amount %d: expected plan %q, got rejection", tc.amount, tc.plan)
		}
		if p.Name != tc.plan {
			t.Fatalf("amount %d: expected plan %q, got %q", tc.amount, tc.plan, p.Name)
		}
	}
}

func TestResolvePlan_LoweredMinimum(t *testing.T) {
	// one pricing revision dropped the cheapest plan floor to 3000
	s := NewSubscriptionService(nil, nil, 0, 3000)

	if p := s.ResolvePlan(2999); p != nil {
		t.Fatalf("expected rejection below floor, got %q", p.Name)
	}
	if p := s.ResolvePlan(3000); p == nil || p.Name != "3 Days VIP" {
		t.Fatalf("expected 3 Days VIP at 3000, got %+v", p)
	}
}

func TestPlanDurations(t *testing.T) {
	s := NewSubscriptionService(nil, nil, 0, 5000)

	days := func(amount int64) float64 {
		p := s.ResolvePlan(amount)
		if p == nil {
			t.Fatalf("amount %d: unexpected rejection", amount)
		}
		return p.Duration.Hours() / 24
	}

	if d := days(5000); d != 3 {
		t.Fatalf("expected 3 days, got %v", d)
	}
	if d := days(10000); d != 14 {
		t.Fatalf("expected 14 days, got %v", d)
	}
	if d := days(35000); d != 30 {
		t.Fatalf("expected 30 days, got %v", d)
	}
	if d := days(250000); d != 365 {
		t.Fatalf("expected 365 days, got %v", d)
	}
}
