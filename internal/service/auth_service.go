package service

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/alexedwards/argon2id"

	"github.com/smartcardai/trialdesk/internal/domain"
	"github.com/smartcardai/trialdesk/internal/store/sqlite"
	"github.com/smartcardai/trialdesk/pkg/auth"
	"github.com/smartcardai/trialdesk/pkg/config"
	"github.com/smartcardai/trialdesk/pkg/logger"
)

const (
	RoleAdmin  = "admin"
	RoleIntern = "intern"
)

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

type authService struct {
	interns sqlite.InternRepo
	cfg     *config.Config
}

func NewAuthService(interns sqlite.InternRepo, cfg *config.Config) AuthService {
	return &authService{interns: interns, cfg: cfg}
}

// Login checks the configured admin account first, then falls back to
// intern credentials. Every failure path returns the same error so the
// response does not leak which part was wrong.
func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.cfg.Auth.AdminUsername != "" && username == strings.ToLower(s.cfg.Auth.AdminUsername) {
		if subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.Auth.AdminPassword)) != 1 {
			return nil, domain.ErrInvalidCredentials
		}

		token, err := auth.NewAccessToken(0, username, RoleAdmin, s.cfg.Auth.JWTSecret, s.cfg.Auth.AccessTokenTTL)
		if err != nil {
			return nil, err
		}
		return &LoginResult{Token: token, Role: RoleAdmin, Username: username}, nil
	}

	intern, err := s.interns.GetByUsername(ctx, username)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	match, err := argon2id.ComparePasswordAndHash(password, intern.PasswordHash)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to verify password hash", "error", err, "intern_id", intern.ID)
		return nil, domain.ErrInvalidCredentials
	}
	if !match {
		return nil, domain.ErrInvalidCredentials
	}

	if intern.Status == domain.InternInactive {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := auth.NewAccessToken(intern.ID, intern.Username, RoleIntern, s.cfg.Auth.JWTSecret, s.cfg.Auth.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:    token,
		Role:     RoleIntern,
		ID:       intern.ID,
		Username: intern.Username,
		Name:     intern.Name,
	}, nil
}
