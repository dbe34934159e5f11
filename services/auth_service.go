package services

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// AuthService verifies the shared admin password. When a bcrypt hash is
// configured it takes precedence over the plaintext fallback.
type AuthService interface {
	VerifyAdminPassword(password string) error
}

type authService struct {
	password     string
	passwordHash string
}

func NewAuthService(password, passwordHash string) (AuthService, error) {
	if password == "" && passwordHash == "" {
		return nil, errors.New("admin password is not configured")
	}
	return &authService{password: password, passwordHash: passwordHash}, nil
}

func (s *authService) VerifyAdminPassword(password string) error {
	if password == "" {
		return ErrInvalidCredentials
	}
	if s.passwordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
			return ErrInvalidCredentials
		}
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(s.password), []byte(password)) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}
