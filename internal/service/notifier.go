package service

import "context"

// Notifier delivers a text message to a chat identity. Implementations are
// best-effort: services log delivery failures and move on, they never roll
// back state that already committed.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}
