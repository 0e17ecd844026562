// Package communities contains the community/membership repository.
package communities

import (
	"context"

	"github.com/aquidolado/aqui/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Community) (*models.Community, error)
	GetByID(ctx context.Context, id int64) (*models.Community, error)
	GetByAccessCode(ctx context.Context, code string) (*models.Community, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Community, error)
	ListWhereAdmin(ctx context.Context, userID int64) ([]*models.Community, error)
	Rename(ctx context.Context, id int64, name string) error
	SetAccessCode(ctx context.Context, id int64, code string) error
	Delete(ctx context.Context, id int64) error

	AddMember(ctx context.Context, communityID, userID int64, isAdmin bool) error
	RemoveMember(ctx context.Context, communityID, userID int64) error
	IsMember(ctx context.Context, communityID, userID int64) (bool, error)
	IsAdmin(ctx context.Context, communityID, userID int64) (bool, error)
	SetAdmin(ctx context.Context, communityID, userID int64, isAdmin bool) error
	ListMembers(ctx context.Context, communityID int64) ([]*models.Member, error)
	CountAdmins(ctx context.Context, communityID int64) (int, error)

	CreateJoinRequest(ctx context.Context, communityID, userID int64) error
	GetJoinRequest(ctx context.Context, id int64) (*models.JoinRequest, error)
	ListPendingJoinRequests(ctx context.Context, communityID int64) ([]*models.JoinRequest, error)
	SetJoinRequestStatus(ctx context.Context, id int64, status models.JoinRequestStatus) error
	HasPendingJoinRequest(ctx context.Context, communityID, userID int64) (bool, error)
}
