package services

import (
	"context"

	"github.com/aquidolado/aqui/internal/client/api"
	"github.com/aquidolado/aqui/internal/client/session"
)

// AuthService wraps the /api/auth endpoints. It satisfies
// session.Authenticator so the session store can drive login and register.
type AuthService struct {
	api *api.Client
}

func NewAuthService(client *api.Client) *AuthService {
	return &AuthService{api: client}
}

type authWire struct {
	Token         string `json:"token"`
	UserID        int64  `json:"userId"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Whatsapp      string `json:"whatsapp,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
}

func (w *authWire) credentials() *session.Credentials {
	return &session.Credentials{
		Token:         w.Token,
		User:          session.User{ID: w.UserID, Email: w.Email, Name: w.Name},
		EmailVerified: w.EmailVerified,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*session.Credentials, error) {
	var out authWire
	err := s.api.Post(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.credentials(), nil
}

func (s *AuthService) Register(ctx context.Context, name, email, password, whatsapp string) (*session.Credentials, error) {
	var out authWire
	err := s.api.Post(ctx, "/api/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
		"whatsapp": whatsapp,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.credentials(), nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	return s.api.Post(ctx, "/api/auth/verify-email", map[string]string{"token": token}, nil)
}

// ResendVerification uses a longer ceiling than the default: the server
// delivers the mail before answering.
func (s *AuthService) ResendVerification(ctx context.Context) error {
	return s.api.PostWithTimeout(ctx, "/api/auth/resend-verification", nil, nil, api.ResendTimeout)
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	return s.api.Post(ctx, "/api/auth/forgot-password", map[string]string{"email": email}, nil)
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	return s.api.Post(ctx, "/api/auth/reset-password", map[string]string{
		"token":       token,
		"newPassword": password,
	}, nil)
}
