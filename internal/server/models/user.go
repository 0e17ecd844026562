// Package models contains the server-side domain entities.
package models

import "time"

type User struct {
	ID            int64
	Name          string
	Email         string
	PasswordHash  []byte
	Whatsapp      string
	Address       string
	EmailVerified bool
	CreatedAt     time.Time
}

// TokenPurpose discriminates single-use action tokens.
type TokenPurpose string

const (
	PurposeVerifyEmail   TokenPurpose = "VERIFY_EMAIL"
	PurposeResetPassword TokenPurpose = "RESET_PASSWORD"
)

// ActionToken is a single-use, expiring token mailed to the user for
// email verification or password reset.
type ActionToken struct {
	Token     string
	UserID    int64
	Purpose   TokenPurpose
	ExpiresAt time.Time
}
