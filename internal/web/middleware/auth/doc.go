// Package auth provides the session middleware of the web application.
//
// Most pages and the whole JSON api are public, so the middleware only:
//   - Loads the session of the request into fiber.Locals for handlers and templates
//   - Redirects anonymous visitors of the admin pages to the login page
//   - Sends signed-in users away from the login and sign-up pages
//
// Usage:
//
//	app.Use(authmiddleware.Middleware)
//
// Permission checks stay with the routes, see auth.RequirePermission.
package auth
