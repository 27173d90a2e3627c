package repository

import (
	"context"

	"dramabox_webapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type HistoryRepository struct {
	db *pgxpool.Pool
}

func NewHistoryRepository(db *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Upsert overwrites the episode marker and timestamp for the (user, book)
// pair. There is never more than one history row per pair.
func (r *HistoryRepository) Upsert(ctx context.Context, h *domain.WatchHistory) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO watch_history (telegram_id, book_id, title, cover_url, episode_number)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (telegram_id, book_id) DO UPDATE SET
			episode_number = EXCLUDED.episode_number,
			watched_at = CURRENT_TIMESTAMP`,
		h.TelegramID, h.BookID, h.Title, h.CoverURL, h.EpisodeNumber,
	)
	return err
}

func (r *HistoryRepository) ListByUser(ctx context.Context, telegramID int64) ([]domain.WatchHistory, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, telegram_id, book_id, COALESCE(title, ''), COALESCE(cover_url, ''), episode_number, watched_at
		 FROM watch_history
		 WHERE telegram_id = $1
		 ORDER BY watched_at DESC`,
		telegramID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []domain.WatchHistory{}
	for rows.Next() {
		var h domain.WatchHistory
		if err := rows.Scan(&h.ID, &h.TelegramID, &h.BookID, &h.Title, &h.CoverURL, &h.EpisodeNumber, &h.WatchedAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
