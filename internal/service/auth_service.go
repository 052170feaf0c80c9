package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"erp-injector/internal/config"
	"erp-injector/internal/models"
	"erp-injector/internal/utils"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// AuthService validates the configured service credentials and issues API
// tokens. A bcrypt hash takes precedence over a plaintext password when
// both are configured.
type AuthService struct {
	cfg *config.Config
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

func (s *AuthService) Login(req models.LoginRequest) (*models.LoginResponse, error) {
	if req.Username != s.cfg.APIUsername {
		return nil, ErrInvalidCredentials
	}

	switch {
	case s.cfg.APIPasswordHash != "":
		if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.APIPasswordHash), []byte(req.Password)); err != nil {
			return nil, ErrInvalidCredentials
		}
	case s.cfg.APIPassword != "":
		if req.Password != s.cfg.APIPassword {
			return nil, ErrInvalidCredentials
		}
	default:
		return nil, errors.New("no API credentials configured")
	}

	token, err := utils.GenerateToken(req.Username, "admin", s.cfg.JWTSecret, s.cfg.JWTAccessExpire)
	if err != nil {
		return nil, err
	}

	return &models.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.cfg.JWTAccessExpire.Seconds()),
	}, nil
}
