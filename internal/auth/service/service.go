// Package service implements the single-user board authentication: one
// shared password checked against a bcrypt hash, exchanged for a short-lived
// bearer token.
package service

import (
	"time"

	"dealflow_backend/platform/apperr"
	"dealflow_backend/platform/config"
	"dealflow_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Service issues board access tokens.
type Service struct {
	cfg config.AuthConfig
	log *logger.Logger
}

// New creates an auth service.
func New(cfg config.AuthConfig, log *logger.Logger) *Service {
	return &Service{cfg: cfg, log: log}
}

// TokenPair is the login response payload.
type TokenPair struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Login verifies the board password and returns a signed token. A wrong
// password and a misconfigured hash are indistinguishable to the caller.
func (s *Service) Login(password string) (TokenPair, error) {
	hash := s.cfg.GetBoardPasswordHash()
	if hash == "" {
		s.log.Error("board password hash not configured")
		return TokenPair{}, apperr.Unauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return TokenPair{}, apperr.Unauthorized("invalid credentials")
	}

	expiresAt := time.Now().Add(s.cfg.GetAccessTokenTTL())
	claims := jwt.RegisteredClaims{
		Subject:   "board",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.GetJWTSecret()))
	if err != nil {
		s.log.Error("token signing failed", "error", err)
		return TokenPair{}, apperr.Internal("could not issue token")
	}

	return TokenPair{AccessToken: signed, ExpiresAt: expiresAt}, nil
}
