package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"erp-injector/internal/config"
	"erp-injector/internal/models"
	"erp-injector/internal/utils"
)

func authConfig() *config.Config {
	return &config.Config{
		APIUsername:     "pipeline",
		APIPassword:     "secret",
		JWTSecret:       "test-secret",
		JWTAccessExpire: time.Hour,
	}
}

func TestAuthService_Login(t *testing.T) {
	s := NewAuthService(authConfig())

	resp, err := s.Login(models.LoginRequest{Username: "pipeline", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := utils.ValidateToken(resp.AccessToken, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "pipeline", claims.Username)
	assert.Equal(t, "admin", claims.Role)
}

func TestAuthService_RejectsBadCredentials(t *testing.T) {
	s := NewAuthService(authConfig())

	_, err := s.Login(models.LoginRequest{Username: "pipeline", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login(models.LoginRequest{Username: "intruder", Password: "secret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_PrefersPasswordHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := authConfig()
	cfg.APIPasswordHash = string(hash)
	s := NewAuthService(cfg)

	// The plaintext password is ignored once a hash is configured.
	_, err = s.Login(models.LoginRequest{Username: "pipeline", Password: "secret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := s.Login(models.LoginRequest{Username: "pipeline", Password: "hashed-secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestAuthService_NoCredentialsConfigured(t *testing.T) {
	cfg := authConfig()
	cfg.APIPassword = ""
	s := NewAuthService(cfg)

	_, err := s.Login(models.LoginRequest{Username: "pipeline", Password: "anything"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}
