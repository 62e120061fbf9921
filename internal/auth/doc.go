// Package auth provides authentication and authorization for reader accounts.
//
// Accounts come from two sources:
//   - LocalProvider: email and password sign-up and sign-in with Argon2id hashing
//   - OIDCProvider: OpenID Connect login through an external identity provider
//
// TOTP adds an optional time-based one-time password checked at sign-in.
//
// # Authorization
//
// Every user has one role and roles hold permissions (RBAC). SeedRBAC creates the
// permissions of Definitions, the admin role holding all of them and the member
// role given to new accounts.
//
// Fiber middleware protects routes:
//   - RequireAuthenticated: any signed-in user
//   - RequirePermission / RequireAnyPermission: users whose role holds the permission
//   - RequireAllPermissions: users whose role holds every listed permission
//   - AddPermissionsToLocals: exposes the permissions to templates
//
// Example usage:
//
//	authService := auth.NewService(db)
//
//	app.Post("/api/v1/admin/import/:action",
//	    auth.RequireAllPermissions(authService, auth.PermBibleImport, auth.PermBibleRead),
//	    handler,
//	)
package auth
