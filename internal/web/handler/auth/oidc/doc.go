// Package oidc provides handlers for OpenID Connect (OIDC) authentication flow.
//
// The flow includes:
//   - Login initiation with CSRF protection via state tokens
//   - Authorization callback handling with ID token verification
//   - Account creation or refresh from OIDC claims
//   - Session creation keeping the raw ID token for the logout hint
//
// Routes:
//
//	GET /auth/oidc/login    - Initiate OIDC login flow
//	GET /auth/oidc/callback - Handle provider callback
//
// Signing out goes through /logout, which asks LogoutURL for the provider end session url.
package oidc
