package httpapi

import (
	"strings"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/server/auth"
	"github.com/gofiber/fiber/v3"
)

const CtxUserIDKey = "user_id"

type AuthMiddleware struct {
	secret []byte
}

func NewAuthMiddleware(secretKey string) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secretKey)}
}

// Middleware resolves the acting user from a bearer token, falling back to
// the jwt cookie, and stores the id under CtxUserIDKey.
func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearerTokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if !ok {
			token = c.Cookies(common.AuthCookieName)
		}
		if token == "" {
			return NewAppError(fiber.StatusUnauthorized, "unauthorized: no token provided", nil)
		}

		userID, err := auth.GetUserIDFromToken(token, m.secret)
		if err != nil {
			return NewAppError(fiber.StatusUnauthorized, "unauthorized: invalid token", err)
		}

		c.Locals(CtxUserIDKey, userID)
		return c.Next()
	}
}

func bearerTokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

func currentUserID(c fiber.Ctx) (string, error) {
	id, ok := c.Locals(CtxUserIDKey).(string)
	if !ok || id == "" {
		return "", NewAppError(fiber.StatusUnauthorized, "unauthorized", nil)
	}
	return id, nil
}
