// Package common defines shared constants and sentinel errors used across
// client and server layers of Aqui. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	ErrorAlreadyExists = errors.New("already exists")
	ErrorValidation    = errors.New("validation error")

	ErrorEmailAlreadyExists   = errors.New("email already exists")
	ErrorInvalidLoginPassword = errors.New("invalid email/password")

	// Membership errors.
	ErrorNotAMember    = errors.New("not a member of this community")
	ErrorNotAnAdmin    = errors.New("not an admin of this community")
	ErrorInvalidCode   = errors.New("invalid access code")
	ErrorJoinPending   = errors.New("join request pending approval")
	ErrorAlreadyJoined = errors.New("already a member")
)
