package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/localnerve/equirecords/internal/models"
	"github.com/localnerve/equirecords/internal/services"
	"github.com/localnerve/equirecords/internal/types"
)

// SessionCookie is the Authorizer session cookie name
const SessionCookie = "cookie_session"

// UserKey is the Locals key holding the authenticated *models.User
const UserKey = "user"

// Guard builds route guards requiring one permission
type Guard func(perm string) fiber.Handler

// RequirePermission returns a Guard validating the session cookie with auth
// and requiring the local user's role to grant the permission
func RequirePermission(db *gorm.DB, auth services.Authenticator) Guard {
	return func(perm string) fiber.Handler {
		return func(c *fiber.Ctx) error {
			return authorize(c, db, auth, perm)
		}
	}
}

// authorize performs the authorization check
func authorize(c *fiber.Ctx, db *gorm.DB, auth services.Authenticator, perm string) error {
	session := c.Cookies(SessionCookie)
	if session == "" {
		return &types.CustomError{
			Code:    fiber.StatusUnauthorized,
			Message: fmt.Sprintf("Authorizer cookie %q not found", SessionCookie),
			Type:    "AuthError",
		}
	}

	if err := auth.Init(c.Protocol(), c.Hostname()); err != nil {
		zap.L().Error("authorizer unavailable", zap.Error(err))
		return &types.CustomError{
			Code:    fiber.StatusServiceUnavailable,
			Message: "Authorizer is unavailable",
			Type:    "AuthError",
		}
	}

	user, err := services.UserForSession(db, auth, session)
	if err != nil {
		return &types.CustomError{
			Code:    fiber.StatusUnauthorized,
			Message: fmt.Sprintf("Invalid session: %v", err),
			Type:    "AuthError",
		}
	}

	if !user.Can(perm) {
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: fmt.Sprintf("role %s lacks permission %s", user.Role, perm),
			Type:    "Forbidden",
		}
	}

	c.Locals(UserKey, user)
	return c.Next()
}

// CurrentUser returns the user stored by the guard, nil on unguarded routes
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(UserKey).(*models.User)
	return user
}
