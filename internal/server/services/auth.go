// Package services contains server-side business logic. This file implements
// AuthService, which handles registration, login, email verification and the
// password-reset flow.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aquidolado/aqui/internal/apperror"
	"github.com/aquidolado/aqui/internal/common"
	"github.com/aquidolado/aqui/internal/dbx"
	"github.com/aquidolado/aqui/internal/logging"
	"github.com/aquidolado/aqui/internal/server/auth"
	sc "github.com/aquidolado/aqui/internal/server/config"
	"github.com/aquidolado/aqui/internal/server/mailer"
	"github.com/aquidolado/aqui/internal/server/models"
	"github.com/aquidolado/aqui/internal/server/repositories/repomanager"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// MinPasswordLength applies to registration and password reset.
const MinPasswordLength = 8

// AuthResult bundles a freshly minted bearer token with the user it
// authenticates.
type AuthResult struct {
	Token string
	User  *models.User
}

// AuthService provides authentication operations:
// - Register / Login: credentials and token minting
// - VerifyEmail / ResendVerification: mailed single-use verification tokens
// - ForgotPassword / ResetPassword: mailed single-use reset tokens
type AuthService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	mailer                      mailer.Mailer
	logger                      logging.Logger
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	actionTokenValidityDuration time.Duration
	appBaseURL                  string
}

// NewAuthService constructs an AuthService using repositories, mail
// delivery, and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, ml mailer.Mailer, logger logging.Logger, cfg *sc.Config) *AuthService {
	return &AuthService{
		db:                          db,
		repomanager:                 m,
		mailer:                      ml,
		logger:                      logger,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		actionTokenValidityDuration: cfg.ActionTokenValidityDuration,
		appBaseURL:                  strings.TrimRight(cfg.AppBaseURL, "/"),
	}
}

// Register creates a user, mints a token, and mails a verification link.
// Mail delivery is best-effort: a delivery failure is logged, not returned,
// since the user can re-request the mail later.
func (s *AuthService) Register(ctx context.Context, name, email, password, whatsapp string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	fields := map[string]string{}
	if name == "" {
		fields["name"] = "name is required"
	}
	if !emailPattern.MatchString(email) {
		fields["email"] = "invalid email address"
	}
	if len(password) < MinPasswordLength {
		fields["password"] = fmt.Sprintf("password must be at least %d characters", MinPasswordLength)
	}
	if len(fields) > 0 {
		return nil, apperror.Validation(fields)
	}

	if _, err := s.repomanager.Users(s.db).GetByEmail(ctx, email); err == nil {
		return nil, common.ErrorEmailAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	var user *models.User
	var verifyToken string
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var txErr error
		user, txErr = s.repomanager.Users(tx).Create(ctx, &models.User{
			Name:         name,
			Email:        email,
			PasswordHash: hash,
			Whatsapp:     whatsapp,
		})
		if txErr != nil {
			return fmt.Errorf("error creating user: %w", txErr)
		}
		verifyToken, txErr = s.createActionToken(ctx, tx, user.ID, models.PurposeVerifyEmail)
		return txErr
	}); err != nil {
		return nil, err
	}

	s.sendVerificationMail(ctx, user, verifyToken)

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials and mints a bearer token. An unknown email and
// a wrong password produce the same error so login does not leak which
// addresses are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInvalidLoginPassword
		}
		return nil, common.ErrorInternal
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, common.ErrorInvalidLoginPassword
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &AuthResult{Token: token, User: user}, nil
}

// VerifyEmail consumes a mailed verification token and marks the user's
// email as verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	at, err := s.findActionToken(ctx, token, models.PurposeVerifyEmail)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).SetEmailVerified(ctx, at.UserID, true); err != nil {
			return fmt.Errorf("error verifying email: %w", err)
		}
		return s.repomanager.ActionTokens(tx).Delete(ctx, at.Token)
	})
}

// ResendVerification invalidates previous verification tokens for the user
// and mails a fresh one.
func (s *AuthService) ResendVerification(ctx context.Context, userID int64) error {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return nil
	}

	var token string
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.ActionTokens(tx).DeleteForUser(ctx, userID, models.PurposeVerifyEmail); err != nil {
			return err
		}
		var txErr error
		token, txErr = s.createActionToken(ctx, tx, userID, models.PurposeVerifyEmail)
		return txErr
	}); err != nil {
		return err
	}

	s.sendVerificationMail(ctx, user, token)
	return nil
}

// ForgotPassword mails a reset link. Unknown addresses succeed silently so
// the endpoint does not leak which emails are registered.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return common.ErrorInternal
	}

	var token string
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.ActionTokens(tx).DeleteForUser(ctx, user.ID, models.PurposeResetPassword); err != nil {
			return err
		}
		var txErr error
		token, txErr = s.createActionToken(ctx, tx, user.ID, models.PurposeResetPassword)
		return txErr
	}); err != nil {
		return err
	}

	body := fmt.Sprintf("Olá %s,\n\nTo reset your Aqui password, open:\n\n%s/reset-password?token=%s\n\nIf you did not request this, ignore this message.\n",
		user.Name, s.appBaseURL, token)
	if err := s.mailer.Send(ctx, user.Email, "Reset your Aqui password", body); err != nil {
		s.logger.Error(ctx, "error sending password reset mail", "error", err, "user_id", user.ID)
		return common.ErrorInternal
	}
	return nil
}

// ResetPassword consumes a mailed reset token and sets a new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return apperror.ValidationField("newPassword", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	at, err := s.findActionToken(ctx, token, models.PurposeResetPassword)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return common.ErrorInternal
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).UpdatePassword(ctx, at.UserID, hash); err != nil {
			return fmt.Errorf("error updating password: %w", err)
		}
		return s.repomanager.ActionTokens(tx).Delete(ctx, at.Token)
	})
}

// --- helpers below ---

func (s *AuthService) createActionToken(ctx context.Context, tx dbx.DBTX, userID int64, purpose models.TokenPurpose) (string, error) {
	token, err := common.MakeRandHexString(32)
	if err != nil {
		return "", common.ErrorInternal
	}
	if err := s.repomanager.ActionTokens(tx).Create(ctx, &models.ActionToken{
		Token:     token,
		UserID:    userID,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(s.actionTokenValidityDuration),
	}); err != nil {
		return "", fmt.Errorf("error creating action token: %w", err)
	}
	return token, nil
}

func (s *AuthService) findActionToken(ctx context.Context, token string, purpose models.TokenPurpose) (*models.ActionToken, error) {
	at, err := s.repomanager.ActionTokens(s.db).Find(ctx, token, purpose)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, common.ErrorInternal
	}
	if at.ExpiresAt.Before(time.Now()) {
		return nil, common.ErrTokenExpired
	}
	return at, nil
}

func (s *AuthService) sendVerificationMail(ctx context.Context, user *models.User, token string) {
	body := fmt.Sprintf("Olá %s,\n\nConfirm your email address to finish setting up your Aqui account:\n\n%s/verify-email?token=%s\n",
		user.Name, s.appBaseURL, token)
	if err := s.mailer.Send(ctx, user.Email, "Confirm your Aqui email", body); err != nil {
		s.logger.Error(ctx, "error sending verification mail", "error", err, "user_id", user.ID)
	}
}
