package repository

import (
	"context"

	"dramabox_webapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type FavoriteRepository struct {
	db *pgxpool.Pool
}

func NewFavoriteRepository(db *pgxpool.Pool) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Add inserts a favorite, silently ignoring duplicates of the same
// (telegram_id, book_id) pair.
func (r *FavoriteRepository) Add(ctx context.Context, f *domain.Favorite) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO favorites (telegram_id, book_id, title, cover_url)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (telegram_id, book_id) DO NOTHING`,
		f.TelegramID, f.BookID, f.Title, f.CoverURL,
	)
	return err
}

func (r *FavoriteRepository) ListByUser(ctx context.Context, telegramID int64) ([]domain.Favorite, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, telegram_id, book_id, COALESCE(title, ''), COALESCE(cover_url, ''), created_at
		 FROM favorites
		 WHERE telegram_id = $1
		 ORDER BY created_at DESC`,
		telegramID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	favorites := []domain.Favorite{}
	for rows.Next() {
		var f domain.Favorite
		if err := rows.Scan(&f.ID, &f.TelegramID, &f.BookID, &f.Title, &f.CoverURL, &f.CreatedAt); err != nil {
			return nil, err
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

func (r *FavoriteRepository) Remove(ctx context.Context, telegramID int64, bookID string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM favorites WHERE telegram_id = $1 AND book_id = $2`,
		telegramID, bookID,
	)
	return err
}
