package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg := Load()

	if cfg.AppPort != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.AppPort)
	}
	if cfg.FreeEpisodes != 10 {
		t.Fatalf("expected 10 free episodes, got %d", cfg.FreeEpisodes)
	}
	if cfg.ReferralStep != 3 || cfg.ReferralBig != 10 {
		t.Fatalf("unexpected referral thresholds: %d/%d", cfg.ReferralStep, cfg.ReferralBig)
	}
	if cfg.MinPlanAmount != 5000 {
		t.Fatalf("expected min plan amount 5000, got %d", cfg.MinPlanAmount)
	}
	if cfg.ReferralStepDur != 24*time.Hour || cfg.ReferralBigDur != 14*24*time.Hour {
		t.Fatalf("unexpected grant durations: %v/%v", cfg.ReferralStepDur, cfg.ReferralBigDur)
	}
	if !cfg.BotEnabled {
		t.Fatalf("expected bot enabled by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_PORT", "9000")
	t.Setenv("TELEGRAM_ADMIN_ID", "4242")
	t.Setenv("MIN_PLAN_AMOUNT", "3000")
	t.Setenv("FREE_EPISODES", "5")
	t.Setenv("BOT_ENABLED", "false")

	cfg := Load()

	if cfg.AppPort != "9000" {
		t.Fatalf("expected port 9000, got %s", cfg.AppPort)
	}
	if cfg.AdminTelegramID != 4242 {
		t.Fatalf("expected admin id 4242, got %d", cfg.AdminTelegramID)
	}
	if cfg.MinPlanAmount != 3000 {
		t.Fatalf("expected min plan amount 3000, got %d", cfg.MinPlanAmount)
	}
	if cfg.FreeEpisodes != 5 {
		t.Fatalf("expected 5 free episodes, got %d", cfg.FreeEpisodes)
	}
	if cfg.BotEnabled {
		t.Fatalf("expected bot disabled")
	}
}
