package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/aquidolado/aqui/internal/common"
)

// HashPassword derives a bcrypt hash from a plaintext password.
func HashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return hash, nil
}

// CheckPassword compares a stored bcrypt hash against a candidate password.
// A mismatch yields common.ErrorInvalidLoginPassword.
func CheckPassword(hash []byte, password string) error {
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return common.ErrorInvalidLoginPassword
	}
	return nil
}
