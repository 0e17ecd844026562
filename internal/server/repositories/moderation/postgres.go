package moderation

import (
	"context"
	"fmt"

	"github.com/aquidolado/aqui/internal/dbx"
	"github.com/aquidolado/aqui/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateReport(ctx context.Context, report *models.Report) error {
	query :=
		`INSERT INTO reports (ad_id, user_id, reason)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, report.AdID, report.UserID, string(report.Reason)).
		Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CreateContactClick(ctx context.Context, click *models.ContactClick) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contact_clicks (ad_id, community_id, user_id) VALUES ($1, $2, $3)`,
		click.AdID, click.CommunityID, click.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (event_type, community_id, user_id) VALUES ($1, $2, $3)`,
		event.EventType, event.CommunityID, event.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
