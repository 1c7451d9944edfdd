package auth

import (
	"strings"

	"timeclock-backend/internal/config"
	"timeclock-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	// HTTP-only cookie carrying the signed session token.
	SessionCookieName = "timeclock.session"
	// Short-lived cookie holding the OAuth state nonce between login and callback.
	StateCookieName = "timeclock.auth.state"

	CtxUserIDKey   = "user_id"
	CtxUserRoleKey = "user_role"
	CtxUserEmail   = "user_email"
)

// sessionToken pulls the token from the session cookie, falling back to an
// Authorization bearer header for API clients.
func sessionToken(c *fiber.Ctx) string {
	if cookie := c.Cookies(SessionCookieName); cookie != "" {
		return cookie
	}

	authHeader := c.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// SessionMiddleware authenticates the request and stores the caller's
// identity in request-scoped Locals. There is no global "current user".
func SessionMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := sessionToken(c)
		if tokenStr == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
		}

		claims, err := ParseToken(cfg.JWTSecret, tokenStr)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUserRoleKey, claims.Role)
		c.Locals(CtxUserEmail, claims.Email)

		return c.Next()
	}
}

// RequireRole gates a route group to the given roles. Runs after
// SessionMiddleware.
func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roleVal := c.Locals(CtxUserRoleKey)
		role, ok := roleVal.(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Unauthorized. Managers only.")
		}

		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "Unauthorized. Managers only.")
	}
}

// CurrentUserID returns the authenticated user's id from Locals.
func CurrentUserID(c *fiber.Ctx) (uint, error) {
	id, ok := c.Locals(CtxUserIDKey).(uint)
	if !ok {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
	}
	return id, nil
}
