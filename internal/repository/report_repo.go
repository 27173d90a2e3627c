package repository

import (
	"context"

	"dramabox_webapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ReportRepository struct {
	db *pgxpool.Pool
}

func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, rep *domain.Report) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO reports (telegram_id, issue_type, description)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		rep.TelegramID, rep.IssueType, rep.Description,
	).Scan(&rep.ID, &rep.CreatedAt)
}

func (r *ReportRepository) ListRecent(ctx context.Context, limit int) ([]domain.Report, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, telegram_id, issue_type, description, created_at
		 FROM reports
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []domain.Report{}
	for rows.Next() {
		var rep domain.Report
		if err := rows.Scan(&rep.ID, &rep.TelegramID, &rep.IssueType, &rep.Description, &rep.CreatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}
