// Package actiontokens stores the single-use tokens mailed to users for
// email verification and password reset.
package actiontokens

import (
	"context"

	"github.com/aquidolado/aqui/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, token *models.ActionToken) error
	Find(ctx context.Context, token string, purpose models.TokenPurpose) (*models.ActionToken, error)
	Delete(ctx context.Context, token string) error
	DeleteForUser(ctx context.Context, userID int64, purpose models.TokenPurpose) error
}
