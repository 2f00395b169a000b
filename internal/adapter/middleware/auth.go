package middleware

import (
	"net/http"
	"strings"

	"agriloan-backend/internal/infrastructure/token"

	"github.com/labstack/echo/v4"
)

const identityKey = "identity"

type TokenParser interface {
	Parse(raw string) (*token.Claims, error)
}

// Identity is the authenticated caller, taken from the bearer token.
type Identity struct {
	Role  string
	ID    string
	Email string
}

// RequireAuth accepts a bearer token signed by parser and, when roles is
// non-empty, one of the listed roles.
func RequireAuth(parser TokenParser, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			raw = strings.TrimSpace(raw)
			if !ok || raw == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing token"})
			}
			claims, err := parser.Parse(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
			}
			if len(roles) > 0 && !hasRole(roles, claims.Role) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden"})
			}
			c.Set(identityKey, Identity{Role: claims.Role, ID: claims.ID, Email: claims.Email})
			return next(c)
		}
	}
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func IdentityFrom(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	return id, ok
}
