package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/query-desk/internal/auth"
	"github.com/spec-kit/query-desk/internal/domain"
	"github.com/spec-kit/query-desk/internal/repository"
	apperrors "github.com/spec-kit/query-desk/pkg/util/errorutil"
)

// InvalidCredentialsMessage is returned for any failed login.
const InvalidCredentialsMessage = "Invalid username or password."

// AuthService coordinates login and logout for the manager.
type AuthService struct {
	credential *auth.Credential
	tokens     *auth.TokenManager
	sessions   repository.SessionRepository
	logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(credential *auth.Credential, tokens *auth.TokenManager, sessions repository.SessionRepository, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{credential: credential, tokens: tokens, sessions: sessions, logger: logger}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// Login grants a session on an exact credential match.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.Token, error) {
	if !s.credential.Matches(username, password) {
		s.logger.Info("login rejected", zap.String("username", username))
		return domain.Token{}, apperrors.NewUnauthorized(InvalidCredentialsMessage)
	}
	if err := s.sessions.Activate(ctx); err != nil {
		return domain.Token{}, apperrors.NewInternalError(err)
	}
	token, err := s.tokens.GenerateToken(username)
	if err != nil {
		return domain.Token{}, apperrors.NewInternalError(err)
	}
	s.logger.Info("manager logged in", zap.String("username", username))
	return token, nil
}

// Logout ends the session.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.sessions.Deactivate(ctx); err != nil {
		return apperrors.NewInternalError(err)
	}
	s.logger.Info("manager logged out")
	return nil
}

// SessionActive reports whether a session is currently granted.
func (s *AuthService) SessionActive(ctx context.Context) (bool, error) {
	return s.sessions.IsActive(ctx)
}
