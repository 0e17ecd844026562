package actiontokens

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

func (r *PostgresRepository) Create(ctx context.Context, token *models.ActionToken) error {
	query :=
		`INSERT INTO action_tokens (token, user_id, purpose, expires_at)
		 VALUES ($1, $2, $3, $4)
		 `

	_, err := r.db.ExecContext(ctx, query, token.Token, token.UserID, string(token.Purpose), token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, token string, purpose models.TokenPurpose) (*models.ActionToken, error) {
	query :=
		`SELECT token, user_id, purpose, expires_at FROM action_tokens
		 WHERE token = $1 AND purpose = $2
		 `

	at := &models.ActionToken{}
	err := r.db.QueryRowContext(ctx, query, token, string(purpose)).
		Scan(&at.Token, &at.UserID, &at.Purpose, &at.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return at, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM action_tokens WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteForUser(ctx context.Context, userID int64, purpose models.TokenPurpose) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM action_tokens WHERE user_id = $1 AND purpose = $2`, userID, string(purpose))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
