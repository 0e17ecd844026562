package services

import (
	"context"
	"strconv"

	"github.com/aquidolado/aqui/internal/client/api"
	"github.com/aquidolado/aqui/internal/client/community"
)

// CommunityService wraps the /api/communities endpoints. It satisfies
// community.Lister so the community store can refresh through it.
type CommunityService struct {
	api *api.Client
}

func NewCommunityService(client *api.Client) *CommunityService {
	return &CommunityService{api: client}
}

// ListMine returns the user's memberships in the community store's shape.
func (s *CommunityService) ListMine(ctx context.Context) ([]community.Community, error) {
	var wire []CommunityInfo
	if err := s.api.Get(ctx, "/api/communities", &wire); err != nil {
		return nil, err
	}

	// Admin flags decorate the list; a failed lookup degrades to
	// member-only rendering instead of failing the refresh.
	admin := map[int64]bool{}
	adminOf, err := s.ListWhereAdmin(ctx)
	if err == nil {
		for _, c := range adminOf {
			admin[c.ID] = true
		}
	}

	out := make([]community.Community, 0, len(wire))
	for _, c := range wire {
		out = append(out, community.Community{
			ID:         c.ID,
			Name:       c.Name,
			AccessCode: c.AccessCode,
			IsAdmin:    admin[c.ID],
		})
	}
	return out, nil
}

func (s *CommunityService) ListWhereAdmin(ctx context.Context) ([]CommunityInfo, error) {
	var out []CommunityInfo
	if err := s.api.Get(ctx, "/api/communities/admin", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CommunityService) Create(ctx context.Context, name string, isPrivate bool, postalCode string) (*CommunityInfo, error) {
	var out CommunityInfo
	err := s.api.Post(ctx, "/api/communities", map[string]any{
		"name":       name,
		"isPrivate":  isPrivate,
		"postalCode": postalCode,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// JoinByCode joins by access code. For private communities the result has
// JoinPending set and no membership exists yet.
func (s *CommunityService) JoinByCode(ctx context.Context, accessCode string) (*CommunityInfo, error) {
	var out CommunityInfo
	err := s.api.Post(ctx, "/api/communities/join", map[string]string{"accessCode": accessCode}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CommunityService) Get(ctx context.Context, id int64) (*CommunityInfo, error) {
	var out CommunityInfo
	if err := s.api.Get(ctx, communityPath(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CommunityService) Leave(ctx context.Context, id int64) error {
	return s.api.Delete(ctx, communityPath(id)+"/leave")
}

func (s *CommunityService) Rename(ctx context.Context, id int64, name string) error {
	return s.api.Patch(ctx, communityPath(id)+"/admin", map[string]string{"name": name}, nil)
}

func (s *CommunityService) DeleteCommunity(ctx context.Context, id int64) error {
	return s.api.Delete(ctx, communityPath(id)+"/admin")
}

func (s *CommunityService) ListJoinRequests(ctx context.Context, id int64) ([]JoinRequest, error) {
	var out []JoinRequest
	if err := s.api.Get(ctx, communityPath(id)+"/admin/requests", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CommunityService) ApproveJoinRequest(ctx context.Context, communityID, requestID int64) error {
	return s.api.Post(ctx, requestPath(communityID, requestID)+"/approve", nil, nil)
}

func (s *CommunityService) RejectJoinRequest(ctx context.Context, communityID, requestID int64) error {
	return s.api.Post(ctx, requestPath(communityID, requestID)+"/reject", nil, nil)
}

func (s *CommunityService) ListMembers(ctx context.Context, id int64) ([]Member, error) {
	var out []Member
	if err := s.api.Get(ctx, communityPath(id)+"/admin/members", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CommunityService) RemoveMember(ctx context.Context, communityID, memberID int64) error {
	return s.api.Delete(ctx, communityPath(communityID)+"/admin/members/"+strconv.FormatInt(memberID, 10))
}

func (s *CommunityService) PromoteAdmin(ctx context.Context, communityID, userID int64) error {
	return s.api.Post(ctx, communityPath(communityID)+"/admin/admins", map[string]int64{"userId": userID}, nil)
}

func (s *CommunityService) ResignAdmin(ctx context.Context, communityID int64) error {
	return s.api.Delete(ctx, communityPath(communityID)+"/admin/me")
}

func (s *CommunityService) RegenerateAccessCode(ctx context.Context, communityID int64) (string, error) {
	var out struct {
		AccessCode string `json:"accessCode"`
	}
	if err := s.api.Post(ctx, communityPath(communityID)+"/admin/regenerate-access-code", nil, &out); err != nil {
		return "", err
	}
	return out.AccessCode, nil
}

func communityPath(id int64) string {
	return "/api/communities/" + strconv.FormatInt(id, 10)
}

func requestPath(communityID, requestID int64) string {
	return communityPath(communityID) + "/admin/requests/" + strconv.FormatInt(requestID, 10)
}
