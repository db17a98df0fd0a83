package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/supportbox/internal/triage"
	apperrors "github.com/spec-kit/supportbox/pkg/util"
)

const sessionKey = "triage_session"

// SessionMiddleware resolves the bearer session token to a live triage session.
type SessionMiddleware struct {
	tokens *TokenManager
	store  *triage.Store
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(tokens *TokenManager, store *triage.Store) *SessionMiddleware {
	return &SessionMiddleware{tokens: tokens, store: store}
}

// Handle enforces a valid session token on triage routes.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid session token")
	}

	session, err := m.store.Get(claims.SessionID)
	if err != nil {
		return apperrors.NewUnauthorized("session expired or abandoned")
	}

	c.Locals(sessionKey, session)
	return c.Next()
}

// SessionFromContext retrieves the session loaded by the middleware.
func SessionFromContext(c *fiber.Ctx) (*triage.Session, bool) {
	session, ok := c.Locals(sessionKey).(*triage.Session)
	return session, ok && session != nil
}
