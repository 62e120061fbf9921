package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/biblia-online/biblia/internal/web/handler"
	"github.com/biblia-online/biblia/internal/web/handler/login"
	"github.com/biblia-online/biblia/internal/web/session"
)

// AdminPagesPrefix is the path prefix of the pages that need a signed-in user.
const AdminPagesPrefix = handler.RootPath + "admin"

// Middleware is a Fiber middleware that loads the session and guards the admin pages.
func Middleware(c *fiber.Ctx) error {
	path := strings.ToLower(c.Path())
	if strings.HasPrefix(path, "/static") {
		return c.Next()
	}

	_, signedIn := session.Current(c)

	switch {
	case signedIn && IsLoginPage(path):
		return c.Redirect(login.AfterLoginPath)
	case !signedIn && IsAdminPage(path):
		return c.Redirect(login.Path)
	}

	return c.Next()
}

// IsLoginPage checks if path is the login or sign-up page.
func IsLoginPage(path string) bool {
	return matches(path, login.Path) || matches(path, login.RegisterPath)
}

// IsAdminPage checks if path is one of the admin pages.
func IsAdminPage(path string) bool {
	return matches(path, AdminPagesPrefix)
}

func matches(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
