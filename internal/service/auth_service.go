package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/courier-service/internal/auth"
	"github.com/spec-kit/courier-service/internal/config"
	"github.com/spec-kit/courier-service/internal/domain"
	"github.com/spec-kit/courier-service/internal/repository"
	apperrors "github.com/spec-kit/courier-service/pkg/util/errorutil"
)

// AuthService coordinates login, logout and session resolution.
type AuthService struct {
	users      repository.UserRepository
	sessions   auth.SessionStore
	tokenMgr   *auth.TokenManager
	superAdmin config.SuperAdminConfig
	logger     *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Sessions auth.SessionStore
	Logger   *zap.Logger
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Identity  *auth.Identity
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sessions := deps.Sessions
	if sessions == nil {
		sessions = auth.NewMemorySessionStore()
	}
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   sessions,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		superAdmin: cfg.SuperAdmin,
		logger:     logger,
	}
}

// Login authenticates by email (or the super admin username) and opens a session.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}

	identity, err := s.authenticate(ctx, identifier, password)
	if err != nil {
		return nil, err
	}

	token, sessionID, expiresAt, err := s.tokenMgr.GenerateToken(identity.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.sessions.Put(ctx, sessionID, identity, s.tokenMgr.TTL()); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("login", zap.String("user_id", identity.ID), zap.String("role", string(identity.Role)))
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Identity: identity}, nil
}

func (s *AuthService) authenticate(ctx context.Context, identifier, password string) (*auth.Identity, error) {
	if s.matchesSuperAdmin(identifier, password) {
		return auth.SuperAdminIdentity(s.superAdmin.Username), nil
	}

	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(identifier))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if !user.Active {
		return nil, apperrors.NewUnauthorized("account inactive")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return auth.NewIdentity(user), nil
}

func (s *AuthService) matchesSuperAdmin(identifier, password string) bool {
	if s.superAdmin.Username == "" || s.superAdmin.Password == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(identifier), []byte(s.superAdmin.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.superAdmin.Password)) == 1
	return userOK && passOK
}

// Logout drops the session behind the token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// Resolve returns the identity behind a token.
func (s *AuthService) Resolve(ctx context.Context, token string) (*auth.Identity, error) {
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	identity, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			return nil, apperrors.NewUnauthorized("session expired")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return identity, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Sessions exposes the session store for middleware usage.
func (s *AuthService) Sessions() auth.SessionStore {
	return s.sessions
}
