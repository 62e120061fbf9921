package auth

import "errors"

var (
	// ErrNoIDToken is returned when the OAuth2 token response doesn't contain an ID token.
	// This typically indicates a misconfigured OIDC provider or an incomplete authentication flow.
	ErrNoIDToken = errors.New("no id_token in token response")

	// ErrInvalidOldPassword is returned when the provided old password does not match the user's current password.
	ErrInvalidOldPassword = errors.New("invalid old password")

	// ErrEmailExists is returned when signing up with an email that already has an account.
	ErrEmailExists = errors.New("an account with this email already exists")

	// ErrUserAccountDisabled is returned when attempting to authenticate a disabled user account.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserNotFound is returned when a user cannot be found in the database.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidEmail is returned when signing up with a malformed email address.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrPasswordTooShort is returned when a new password has fewer than MinPasswordLength characters.
	ErrPasswordTooShort = errors.New("password is too short")

	// ErrRoleNotFound is returned when a role to assign does not exist.
	ErrRoleNotFound = errors.New("role not found")

	// ErrTOTPRequired is returned by sign-in when the account has a second factor and no code was given.
	ErrTOTPRequired = errors.New("two-factor code required")

	// ErrInvalidTOTPCode is returned for a wrong or expired one-time code.
	ErrInvalidTOTPCode = errors.New("invalid two-factor code")

	// ErrTOTPNotEnrolled is returned when confirming or disabling without an enrolled secret.
	ErrTOTPNotEnrolled = errors.New("two-factor authentication is not enrolled")

	// ErrTOTPAlreadyEnabled is returned when enrolling an account whose second factor is active.
	ErrTOTPAlreadyEnabled = errors.New("two-factor authentication is already enabled")
)
