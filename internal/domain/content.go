package domain

import "time"

// Favorite - закладка на дораму
type Favorite struct {
	ID         int64     `db:"id" json:"id"`
	TelegramID int64     `db:"telegram_id" json:"telegram_id"`
	BookID     string    `db:"book_id" json:"book_id"`
	Title      string    `db:"title" json:"title"`
	CoverURL   string    `db:"cover_url" json:"cover_url"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// WatchHistory holds the last watched episode per (user, book). Upserted on
// every watch event, one row per pair.
type WatchHistory struct {
	ID            int64     `db:"id" json:"id"`
	TelegramID    int64     `db:"telegram_id" json:"telegram_id"`
	BookID        string    `db:"book_id" json:"book_id"`
	Title         string    `db:"title" json:"title"`
	CoverURL      string    `db:"cover_url" json:"cover_url"`
	EpisodeNumber int       `db:"episode_number" json:"episode_number"`
	WatchedAt     time.Time `db:"watched_at" json:"watched_at"`
}

// Report - жалоба/обращение пользователя, append-only
type Report struct {
	ID          int64     `db:"id" json:"id"`
	TelegramID  int64     `db:"telegram_id" json:"telegram_id"`
	IssueType   string    `db:"issue_type" json:"issue_type"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
