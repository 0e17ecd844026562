package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/aquidolado/aqui/internal/apperror"
	"github.com/aquidolado/aqui/internal/common"
	"github.com/aquidolado/aqui/internal/server/models"
	"github.com/aquidolado/aqui/internal/server/repositories/repomanager"
)

// UserService exposes the authenticated user's own profile.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager) *UserService {
	return &UserService{db: db, repomanager: m}
}

func (s *UserService) Get(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// UpdateProfile changes the user's display name, whatsapp number, and
// address. Email is immutable.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, name, whatsapp, address string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationField("name", "name is required")
	}
	return s.repomanager.Users(s.db).UpdateProfile(ctx, userID, name, whatsapp, address)
}

// Delete removes the account. Memberships, ads, ratings and comments go
// with it via the schema's cascades.
func (s *UserService) Delete(ctx context.Context, userID int64) error {
	return s.repomanager.Users(s.db).Delete(ctx, userID)
}
