package service_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receiptly/internal/config"
	"receiptly/internal/service"
)

func signToken(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestAuthService_ValidateToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "https://id.example.com", Audience: "receiptly"}
	svc := service.NewAuthService(cfg)

	valid := signToken(t, cfg.Secret, &service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user_123",
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "jane@example.com",
	})

	claims, err := svc.ValidateToken(valid)
	require.NoError(t, err)
	assert.Equal(t, "user_123", claims.UserID())
	assert.Equal(t, "jane@example.com", claims.Email)
}

func TestAuthService_ValidateToken_Rejects(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "https://id.example.com", Audience: "receiptly"}
	svc := service.NewAuthService(cfg)
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name   string
		secret string
		claims jwt.RegisteredClaims
	}{
		{"wrong secret", "other", jwt.RegisteredClaims{Subject: "u", Issuer: cfg.Issuer, Audience: jwt.ClaimStrings{cfg.Audience}, ExpiresAt: exp}},
		{"expired", cfg.Secret, jwt.RegisteredClaims{Subject: "u", Issuer: cfg.Issuer, Audience: jwt.ClaimStrings{cfg.Audience}, ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}},
		{"no expiry", cfg.Secret, jwt.RegisteredClaims{Subject: "u", Issuer: cfg.Issuer, Audience: jwt.ClaimStrings{cfg.Audience}}},
		{"wrong issuer", cfg.Secret, jwt.RegisteredClaims{Subject: "u", Issuer: "evil", Audience: jwt.ClaimStrings{cfg.Audience}, ExpiresAt: exp}},
		{"wrong audience", cfg.Secret, jwt.RegisteredClaims{Subject: "u", Issuer: cfg.Issuer, Audience: jwt.ClaimStrings{"other"}, ExpiresAt: exp}},
		{"no subject", cfg.Secret, jwt.RegisteredClaims{Issuer: cfg.Issuer, Audience: jwt.ClaimStrings{cfg.Audience}, ExpiresAt: exp}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := signToken(t, tt.secret, &service.Claims{RegisteredClaims: tt.claims})
			_, err := svc.ValidateToken(token)
			assert.Error(t, err)
		})
	}
}
