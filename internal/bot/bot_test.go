package bot

import (
	"context"
	"testing"

	"dramabox_webapp/internal/config"
)

// New must not touch the network: connecting belongs to Run so that a
// Telegram outage at boot ends up in the supervisor's backoff.
func TestNew_NoConnection(t *testing.T) {
	b := New(&config.Config{BotToken: "000000:invalid"}, nil, nil, nil)
	if b == nil {
		t.Fatalf("expected bot instance")
	}
	if b.client() != nil {
		t.Fatalf("expected no api client before Run")
	}
}

func TestNotify_BeforeConnect(t *testing.T) {
	b := New(&config.Config{BotToken: "000000:invalid"}, nil, nil, nil)
	if err := b.Notify(context.Background(), 1, "hi"); err == nil {
		t.Fatalf("expected error before connect")
	}
}

func TestNotify_CancelledContext(t *testing.T) {
	b := New(&config.Config{BotToken: "000000:invalid"}, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Notify(ctx, 1, "hi"); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
