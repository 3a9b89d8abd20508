package service

import (
	"testing"
	"time"

	"dealflow_backend/platform/apperr"
	"dealflow_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type fakeConfig struct {
	secret string
	hash   string
	ttl    time.Duration
}

func (f fakeConfig) GetJWTSecret() string            { return f.secret }
func (f fakeConfig) GetBoardPasswordHash() string    { return f.hash }
func (f fakeConfig) GetAccessTokenTTL() time.Duration { return f.ttl }

func testConfig(t *testing.T, password string) fakeConfig {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return fakeConfig{secret: "test-secret", hash: string(hash), ttl: time.Hour}
}

func TestLoginIssuesSignedToken(t *testing.T) {
	cfg := testConfig(t, "correct horse")
	svc := New(cfg, logger.New("development"))

	pair, err := svc.Login("correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair.AccessToken == "" {
		t.Fatal("empty access token")
	}
	if remaining := time.Until(pair.ExpiresAt); remaining < 59*time.Minute {
		t.Fatalf("token expires too soon: %v", remaining)
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(pair.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.secret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != "board" {
		t.Fatalf("subject = %q, want board", claims.Subject)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := New(testConfig(t, "correct horse"), logger.New("development"))

	_, err := svc.Login("battery staple")
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("err = %v, want unauthorized", err)
	}
}

func TestLoginRejectsWhenHashMissing(t *testing.T) {
	svc := New(fakeConfig{secret: "test-secret", ttl: time.Hour}, logger.New("development"))

	_, err := svc.Login("anything")
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("err = %v, want unauthorized", err)
	}
}
