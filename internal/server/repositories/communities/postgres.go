package communities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aquidolado/aqui/internal/common"
	"github.com/aquidolado/aqui/internal/dbx"
	"github.com/aquidolado/aqui/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const communityColumns = `id, name, access_code, is_private, postal_code, created_by_id, created_at`

func scanCommunity(row interface {
	Scan(dest ...any) error
}) (*models.Community, error) {
	c := &models.Community{}
	err := row.Scan(&c.ID, &c.Name, &c.AccessCode, &c.IsPrivate, &c.PostalCode, &c.CreatedByID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Community) (*models.Community, error) {
	query :=
		`INSERT INTO communities (name, access_code, is_private, postal_code, created_by_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		c.Name, c.AccessCode, c.IsPrivate, c.PostalCode, c.CreatedByID).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Community, error) {
	query := `SELECT ` + communityColumns + ` FROM communities WHERE id = $1`
	return scanCommunity(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByAccessCode(ctx context.Context, code string) (*models.Community, error) {
	query := `SELECT ` + communityColumns + ` FROM communities WHERE access_code = $1`
	return scanCommunity(r.db.QueryRowContext(ctx, query, code))
}

func (r *PostgresRepository) listByQuery(ctx context.Context, query string, args ...any) ([]*models.Community, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Community
	for rows.Next() {
		c := &models.Community{}
		if err := rows.Scan(&c.ID, &c.Name, &c.AccessCode, &c.IsPrivate, &c.PostalCode, &c.CreatedByID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Community, error) {
	query :=
		`SELECT c.id, c.name, c.access_code, c.is_private, c.postal_code, c.created_by_id, c.created_at
		 FROM communities c
		 JOIN memberships m ON m.community_id = c.id
		 WHERE m.user_id = $1
		 ORDER BY m.joined_at
		 `
	return r.listByQuery(ctx, query, userID)
}

func (r *PostgresRepository) ListWhereAdmin(ctx context.Context, userID int64) ([]*models.Community, error) {
	query :=
		`SELECT c.id, c.name, c.access_code, c.is_private, c.postal_code, c.created_by_id, c.created_at
		 FROM communities c
		 JOIN memberships m ON m.community_id = c.id
		 WHERE m.user_id = $1 AND m.is_admin
		 ORDER BY m.joined_at
		 `
	return r.listByQuery(ctx, query, userID)
}

func (r *PostgresRepository) Rename(ctx context.Context, id int64, name string) error {
	return r.exec(ctx, `UPDATE communities SET name = $2 WHERE id = $1`, id, name)
}

func (r *PostgresRepository) SetAccessCode(ctx context.Context, id int64, code string) error {
	return r.exec(ctx, `UPDATE communities SET access_code = $2 WHERE id = $1`, id, code)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, `DELETE FROM communities WHERE id = $1`, id)
}

func (r *PostgresRepository) AddMember(ctx context.Context, communityID, userID int64, isAdmin bool) error {
	query :=
		`INSERT INTO memberships (community_id, user_id, is_admin)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (community_id, user_id) DO NOTHING
		 `
	return r.exec(ctx, query, communityID, userID, isAdmin)
}

func (r *PostgresRepository) RemoveMember(ctx context.Context, communityID, userID int64) error {
	return r.exec(ctx, `DELETE FROM memberships WHERE community_id = $1 AND user_id = $2`, communityID, userID)
}

func (r *PostgresRepository) IsMember(ctx context.Context, communityID, userID int64) (bool, error) {
	return r.existsQuery(ctx,
		`SELECT EXISTS(SELECT 1 FROM memberships WHERE community_id = $1 AND user_id = $2)`,
		communityID, userID)
}

func (r *PostgresRepository) IsAdmin(ctx context.Context, communityID, userID int64) (bool, error) {
	return r.existsQuery(ctx,
		`SELECT EXISTS(SELECT 1 FROM memberships WHERE community_id = $1 AND user_id = $2 AND is_admin)`,
		communityID, userID)
}

func (r *PostgresRepository) SetAdmin(ctx context.Context, communityID, userID int64, isAdmin bool) error {
	return r.exec(ctx, `UPDATE memberships SET is_admin = $3 WHERE community_id = $1 AND user_id = $2`,
		communityID, userID, isAdmin)
}

func (r *PostgresRepository) ListMembers(ctx context.Context, communityID int64) ([]*models.Member, error) {
	query :=
		`SELECT m.user_id, u.name, m.is_admin, m.joined_at
		 FROM memberships m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.community_id = $1
		 ORDER BY m.joined_at
		 `

	rows, err := r.db.QueryContext(ctx, query, communityID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Member
	for rows.Next() {
		m := &models.Member{}
		if err := rows.Scan(&m.UserID, &m.Name, &m.IsAdmin, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) CountAdmins(ctx context.Context, communityID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memberships WHERE community_id = $1 AND is_admin`, communityID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) CreateJoinRequest(ctx context.Context, communityID, userID int64) error {
	// A rejected request may be retried; reset it back to pending.
	query :=
		`INSERT INTO join_requests (community_id, user_id, status)
		 VALUES ($1, $2, 'PENDING')
		 ON CONFLICT (community_id, user_id) DO UPDATE SET status = 'PENDING', created_at = now()
		 `
	return r.exec(ctx, query, communityID, userID)
}

func (r *PostgresRepository) GetJoinRequest(ctx context.Context, id int64) (*models.JoinRequest, error) {
	query :=
		`SELECT j.id, j.community_id, j.user_id, u.name, j.status, j.created_at
		 FROM join_requests j
		 JOIN users u ON u.id = j.user_id
		 WHERE j.id = $1
		 `

	jr := &models.JoinRequest{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&jr.ID, &jr.CommunityID, &jr.UserID, &jr.UserName, &jr.Status, &jr.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return jr, nil
}

func (r *PostgresRepository) ListPendingJoinRequests(ctx context.Context, communityID int64) ([]*models.JoinRequest, error) {
	query :=
		`SELECT j.id, j.community_id, j.user_id, u.name, j.status, j.created_at
		 FROM join_requests j
		 JOIN users u ON u.id = j.user_id
		 WHERE j.community_id = $1 AND j.status = 'PENDING'
		 ORDER BY j.created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, communityID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.JoinRequest
	for rows.Next() {
		jr := &models.JoinRequest{}
		if err := rows.Scan(&jr.ID, &jr.CommunityID, &jr.UserID, &jr.UserName, &jr.Status, &jr.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, jr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) SetJoinRequestStatus(ctx context.Context, id int64, status models.JoinRequestStatus) error {
	return r.exec(ctx, `UPDATE join_requests SET status = $2 WHERE id = $1`, id, string(status))
}

func (r *PostgresRepository) HasPendingJoinRequest(ctx context.Context, communityID, userID int64) (bool, error) {
	return r.existsQuery(ctx,
		`SELECT EXISTS(SELECT 1 FROM join_requests WHERE community_id = $1 AND user_id = $2 AND status = 'PENDING')`,
		communityID, userID)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) existsQuery(ctx context.Context, query string, args ...any) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}
