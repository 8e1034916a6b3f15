package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/query-desk/internal/domain"
	"github.com/spec-kit/query-desk/internal/repository"
	apperrors "github.com/spec-kit/query-desk/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// AuthMiddleware validates bearer tokens and requires an active session.
type AuthMiddleware struct {
	tokens   *TokenManager
	sessions repository.SessionRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, sessions repository.SessionRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, sessions: sessions}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	active, err := m.sessions.IsActive(c.UserContext())
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if !active {
		return apperrors.NewUnauthorized("session ended")
	}

	c.Locals(principalKey, &domain.Manager{Username: claims.Username})
	return c.Next()
}

// ManagerFromContext retrieves the authenticated manager.
func ManagerFromContext(c *fiber.Ctx) (*domain.Manager, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	manager, ok := val.(*domain.Manager)
	return manager, ok
}
