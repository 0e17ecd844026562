// Package users contains the user repository.
package users

import (
	"context"

	"github.com/aquidolado/aqui/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, name, whatsapp, address string) (*models.User, error)
	SetEmailVerified(ctx context.Context, id int64, verified bool) error
	UpdatePassword(ctx context.Context, id int64, passwordHash []byte) error
	Delete(ctx context.Context, id int64) error
}
