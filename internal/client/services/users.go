package services

import (
	"context"

	"github.com/aquidolado/aqui/internal/client/api"
)

// UserService wraps the /api/users/me endpoints. Its FetchEmailVerified
// method backs the session store's one-shot verification check.
type UserService struct {
	api *api.Client
}

func NewUserService(client *api.Client) *UserService {
	return &UserService{api: client}
}

func (s *UserService) Me(ctx context.Context) (*Profile, error) {
	var out Profile
	if err := s.api.Get(ctx, "/api/users/me", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *UserService) FetchEmailVerified(ctx context.Context) (bool, error) {
	p, err := s.Me(ctx)
	if err != nil {
		return false, err
	}
	return p.EmailVerified, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, name, whatsapp, address string) (*Profile, error) {
	var out Profile
	err := s.api.Put(ctx, "/api/users/me", map[string]string{
		"name":     name,
		"whatsapp": whatsapp,
		"address":  address,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *UserService) DeleteAccount(ctx context.Context) error {
	return s.api.Delete(ctx, "/api/users/me")
}
