package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/aquidolado/aqui/internal/apperror"
	"github.com/aquidolado/aqui/internal/common"
	"github.com/aquidolado/aqui/internal/dbx"
	"github.com/aquidolado/aqui/internal/server/models"
	"github.com/aquidolado/aqui/internal/server/repositories/repomanager"
)

// JoinResult is the outcome of a join-by-code attempt. Pending is true when
// the community is private and the request awaits admin approval.
type JoinResult struct {
	Community *models.Community
	Pending   bool
}

// CommunityService manages communities, memberships, join requests, and the
// admin workflows on top of them.
type CommunityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCommunityService(db *sql.DB, m repomanager.RepositoryManager) *CommunityService {
	return &CommunityService{db: db, repomanager: m}
}

// Create makes a new community with a fresh access code; the creator becomes
// its first admin.
func (s *CommunityService) Create(ctx context.Context, userID int64, name string, isPrivate bool, postalCode string) (*models.Community, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationField("name", "name is required")
	}

	code, err := common.MakeAccessCode()
	if err != nil {
		return nil, common.ErrorInternal
	}

	var community *models.Community
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Communities(tx)
		var txErr error
		community, txErr = repo.Create(ctx, &models.Community{
			Name:        name,
			AccessCode:  code,
			IsPrivate:   isPrivate,
			PostalCode:  postalCode,
			CreatedByID: userID,
		})
		if txErr != nil {
			return fmt.Errorf("error creating community: %w", txErr)
		}
		return repo.AddMember(ctx, community.ID, userID, true)
	}); err != nil {
		return nil, err
	}
	return community, nil
}

// ListMine returns the communities the user belongs to.
func (s *CommunityService) ListMine(ctx context.Context, userID int64) ([]*models.Community, error) {
	return s.repomanager.Communities(s.db).ListByUser(ctx, userID)
}

// ListWhereAdmin returns the communities the user administers.
func (s *CommunityService) ListWhereAdmin(ctx context.Context, userID int64) ([]*models.Community, error) {
	return s.repomanager.Communities(s.db).ListWhereAdmin(ctx, userID)
}

// Get returns a community the user is a member of. Non-members get
// ErrorNotFound rather than ErrorForbidden so the endpoint does not confirm
// the community exists.
func (s *CommunityService) Get(ctx context.Context, userID, communityID int64) (*models.Community, error) {
	repo := s.repomanager.Communities(s.db)
	member, err := repo.IsMember(ctx, communityID, userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if !member {
		return nil, apperror.NotFound("community", communityID)
	}
	return repo.GetByID(ctx, communityID)
}

// JoinByCode resolves an access code and either adds the user as a member
// (open community) or files a pending join request (private community).
func (s *CommunityService) JoinByCode(ctx context.Context, userID int64, code string) (*JoinResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, common.ErrorInvalidCode
	}

	repo := s.repomanager.Communities(s.db)
	community, err := repo.GetByAccessCode(ctx, code)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInvalidCode
		}
		return nil, common.ErrorInternal
	}

	member, err := repo.IsMember(ctx, community.ID, userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if member {
		return nil, common.ErrorAlreadyJoined
	}

	if community.IsPrivate {
		if err := repo.CreateJoinRequest(ctx, community.ID, userID); err != nil {
			return nil, fmt.Errorf("error creating join request: %w", err)
		}
		return &JoinResult{Community: community, Pending: true}, nil
	}

	if err := repo.AddMember(ctx, community.ID, userID, false); err != nil {
		return nil, fmt.Errorf("error adding member: %w", err)
	}
	return &JoinResult{Community: community}, nil
}

// Leave removes the user's membership. The last admin cannot leave while
// other members remain; they must promote a replacement or delete the
// community first.
func (s *CommunityService) Leave(ctx context.Context, userID, communityID int64) error {
	repo := s.repomanager.Communities(s.db)

	member, err := repo.IsMember(ctx, communityID, userID)
	if err != nil {
		return common.ErrorInternal
	}
	if !member {
		return common.ErrorNotAMember
	}

	admin, err := repo.IsAdmin(ctx, communityID, userID)
	if err != nil {
		return common.ErrorInternal
	}
	if admin {
		admins, err := repo.CountAdmins(ctx, communityID)
		if err != nil {
			return common.ErrorInternal
		}
		members, err := repo.ListMembers(ctx, communityID)
		if err != nil {
			return common.ErrorInternal
		}
		if admins == 1 && len(members) > 1 {
			return apperror.Conflict("promote another admin before leaving")
		}
	}

	return repo.RemoveMember(ctx, communityID, userID)
}

// ListJoinRequests returns the pending join requests of a community the
// user administers.
func (s *CommunityService) ListJoinRequests(ctx context.Context, userID, communityID int64) ([]*models.JoinRequest, error) {
	if err := s.requireAdmin(ctx, userID, communityID); err != nil {
		return nil, err
	}
	return s.repomanager.Communities(s.db).ListPendingJoinRequests(ctx, communityID)
}

// ResolveJoinRequest approves or rejects a pending join request. Approval
// adds the requester as a regular member.
func (s *CommunityService) ResolveJoinRequest(ctx context.Context, userID, communityID, requestID int64, approve bool) error {
	if err := s.requireAdmin(ctx, userID, communityID); err != nil {
		return err
	}

	req, err := s.repomanager.Communities(s.db).GetJoinRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return apperror.NotFound("join request", requestID)
		}
		return common.ErrorInternal
	}
	if req.CommunityID != communityID {
		return apperror.NotFound("join request", requestID)
	}
	if req.Status != models.JoinRequestPending {
		return apperror.Conflict("join request already resolved")
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Communities(tx)
		if !approve {
			return repo.SetJoinRequestStatus(ctx, requestID, models.JoinRequestRejected)
		}
		if err := repo.SetJoinRequestStatus(ctx, requestID, models.JoinRequestApproved); err != nil {
			return err
		}
		return repo.AddMember(ctx, communityID, req.UserID, false)
	})
}

// ListMembers returns the member roster of a community the user administers.
func (s *CommunityService) ListMembers(ctx context.Context, userID, communityID int64) ([]*models.Member, error) {
	if err := s.requireAdmin(ctx, userID, communityID); err != nil {
		return nil, err
	}
	return s.repomanager.Communities(s.db).ListMembers(ctx, communityID)
}

// PromoteAdmin grants admin rights to an existing member.
func (s *CommunityService) PromoteAdmin(ctx context.Context, userID, communityID, targetID int64) error {
	if err := s.requireAdmin(ctx, userID, communityID); err != nil {
		return err
	}

	repo := s.repomanager.Communities(s.db)
	member, err := repo.IsMember(ctx, communityID, targetID)
	if err != nil {
		return common.ErrorInternal
	}
	if !member {
		return common.ErrorNotAMember
	}
	return repo.SetAdmin(ctx, communityID, targetID, true)
}

// ResignAdmin drops the caller's own admin rights, keeping the membership.
// The last admin cannot resign.
func (s *CommunityService) ResignAdmin(ctx context.Context, userID, communityID int64) error {
	if err := s.requireAdmin(ctx, userID, communityID); err != nil {
		return err
	}

	repo := s.repomanager.Communities(s.db)
	admins, err := repo.CountAdmins(ctx, communityID)
	if err != nil {
		return common.ErrorInternal
	}
	if admins <= 1 {
		return apperror.Conflict("cannot resign as the only admin")
	}
	return repo.SetAdmin(ctx, communityID, userID, false)
}

// RemoveMember expels a member. Admins cannot be removed; they must resign
// first.
func (s *CommunityService) RemoveMember(ctx context.Context, userID, communityID, targetID int64) error {
	if err := s.requireAdmin(ctx, userID, communityID); err != nil {
		return err
	}
	if targetID == userID {
		return apperror.Conflict("use leave to remove yourself")
	}

	repo := s.repomanager.Communities(s.db)
	admin, err := repo.IsAdmin(ctx, communityID, targetID)
	if err != nil {
		return common.ErrorInternal
	}
	if admin {
		return apperror.Conflict("cannot remove an admin")
	}
	return repo.RemoveMember(ctx, communityID, targetID)
}

// Rename changes the community name.
func (s *CommunityService) Rename(ctx context.Context, userID, communityID int64, name string) error {
	if err := s.requireAdmin(ctx, userID, communityID); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return apperror.ValidationField("name", "name is required")
	}
	return s.repomanager.Communities(s.db).Rename(ctx, communityID, name)
}

// RegenerateAccessCode replaces the community access code, invalidating the
// previous one immediately.
func (s *CommunityService) RegenerateAccessCode(ctx context.Context, userID, communityID int64) (string, error) {
	if err := s.requireAdmin(ctx, userID, communityID); err != nil {
		return "", err
	}
	code, err := common.MakeAccessCode()
	if err != nil {
		return "", common.ErrorInternal
	}
	if err := s.repomanager.Communities(s.db).SetAccessCode(ctx, communityID, code); err != nil {
		return "", fmt.Errorf("error setting access code: %w", err)
	}
	return code, nil
}

// Delete removes the community with all memberships and ads.
func (s *CommunityService) Delete(ctx context.Context, userID, communityID int64) error {
	if err := s.requireAdmin(ctx, userID, communityID); err != nil {
		return err
	}
	return s.repomanager.Communities(s.db).Delete(ctx, communityID)
}

func (s *CommunityService) requireAdmin(ctx context.Context, userID, communityID int64) error {
	admin, err := s.repomanager.Communities(s.db).IsAdmin(ctx, communityID, userID)
	if err != nil {
		return common.ErrorInternal
	}
	if !admin {
		return common.ErrorNotAnAdmin
	}
	return nil
}
