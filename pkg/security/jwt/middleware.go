package jwt

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/nodalcv/server/pkg/identity"
)

const (
	LocalUserID  = "userId"
	LocalSession = "session"
)

// NewAuthMiddleware rejects requests without a valid bearer token. Accepted
// requests carry the subject under LocalUserID and an identity.Session that
// forwards the same token under LocalSession.
func NewAuthMiddleware(issuer *Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearer(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "missing bearer token"})
		}
		claims, err := issuer.Parse(raw)
		if err != nil {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
		}
		c.Locals(LocalUserID, claims.Subject)
		c.Locals(LocalSession, identity.NewBearerSession(claims.Email, raw))
		return c.Next()
	}
}

// SessionFrom returns the session set by the middleware, or an anonymous one.
func SessionFrom(c *fiber.Ctx) identity.Session {
	if s, ok := c.Locals(LocalSession).(identity.Session); ok {
		return s
	}
	return identity.Anonymous()
}

// bearer accepts "Bearer <token>" and a bare token.
func bearer(header string) string {
	header = strings.TrimSpace(header)
	if scheme, rest, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(rest)
	}
	return header
}
