package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"eventregistry/internal/domain"
)

type bcryptVerifier struct{}

// NewBcryptVerifier returns a PasswordVerifier that checks plaintext
// passwords against bcrypt hashes.
func NewBcryptVerifier() domain.PasswordVerifier {
	return &bcryptVerifier{}
}

func (v *bcryptVerifier) Compare(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return fmt.Errorf("password mismatch: %w", err)
	}
	return nil
}
