package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/biblia-online/biblia/internal/web/session"
)

// LocalPermissions is the fiber.Locals key holding the permission names of the current user.
const LocalPermissions = "permissions"

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).
		JSON(fiber.Map{"error": "Forbidden: You don't have permission to access this resource"})
}

// RequireAuthenticated rejects requests without a valid session.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := session.Current(c); !ok {
			return unauthorized(c)
		}

		return c.Next()
	}
}

// RequirePermission creates Fiber middleware that requires a specific permission.
func RequirePermission(authService *Service, permission string) fiber.Handler {
	return RequireAnyPermission(authService, permission)
}

// RequireAnyPermission creates Fiber middleware that requires at least one of the given permissions.
func RequireAnyPermission(authService *Service, permissions ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := session.Current(c)
		if !ok {
			return unauthorized(c)
		}

		hasPermission, err := authService.HasAnyPermission(sess.User.ID, permissions)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", sess.User.ID).Strs("permissions", permissions).
				Msg("Failed to check permissions")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
		}

		if !hasPermission {
			log.Warn().Uint64("user_id", sess.User.ID).Strs("permissions", permissions).
				Msg("User lacks required permissions")

			return forbidden(c)
		}

		return c.Next()
	}
}

// RequireAllPermissions creates Fiber middleware that requires every one of the given permissions.
func RequireAllPermissions(authService *Service, permissions ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := session.Current(c)
		if !ok {
			return unauthorized(c)
		}

		hasAll, err := authService.HasAllPermissions(sess.User.ID, permissions)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", sess.User.ID).Strs("permissions", permissions).
				Msg("Failed to check permissions")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
		}

		if !hasAll {
			log.Warn().Uint64("user_id", sess.User.ID).Strs("permissions", permissions).
				Msg("User lacks required permissions")

			return forbidden(c)
		}

		return c.Next()
	}
}

// HasPermissionInContext checks if the current user in the Fiber context has a permission.
func HasPermissionInContext(c *fiber.Ctx, authService *Service, permission string) bool {
	sess, ok := session.Current(c)
	if !ok {
		return false
	}

	hasPermission, err := authService.HasPermission(sess.User.ID, permission)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", sess.User.ID).Str("permission", permission).
			Msg("Failed to check permission")

		return false
	}

	return hasPermission
}

// AddPermissionsToLocals is a Fiber middleware that adds user permissions to fiber.Locals.
// Templates use them for conditional rendering.
func AddPermissionsToLocals(authService *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := session.Current(c)
		if !ok {
			return c.Next()
		}

		permissions, err := authService.GetUserPermissions(sess.User.ID)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", sess.User.ID).
				Msg("Failed to get user permissions")

			return c.Next()
		}

		granted := make(map[string]bool, len(permissions))
		for _, p := range permissions {
			granted[p] = true
		}

		c.Locals(LocalPermissions, permissions)
		c.Locals("hasPermission", func(perm string) bool {
			return granted[perm]
		})

		return c.Next()
	}
}
