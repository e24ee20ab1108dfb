package service

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/Prashu2024/form-builder-backend/internal/auth"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const tokenTTL = 24 * time.Hour

// AuthService signs admin tokens. There is a single admin account whose
// credentials come from configuration.
type AuthService struct {
	email     string
	hash      string
	jwtSecret string
}

// NewAuthService hashes the configured admin password once at start-up.
func NewAuthService(email, password, jwtSecret string) (*AuthService, error) {
	if email == "" || password == "" {
		return nil, errors.New("admin email and password are required")
	}
	if jwtSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &AuthService{email: email, hash: hash, jwtSecret: jwtSecret}, nil
}

type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.email)) == 1
	passOK := auth.CheckPassword(password, s.hash)
	if !emailOK || !passOK {
		return nil, ErrInvalidCredentials
	}
	token, err := auth.GenerateToken(s.jwtSecret, s.email, auth.RoleAdmin, tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: time.Now().Add(tokenTTL).UTC()}, nil
}
