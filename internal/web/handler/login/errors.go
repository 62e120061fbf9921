// Package login provides HTTP handlers and helpers for user authentication.
//
// This file defines exported error values used throughout the login flow.
package login

import "errors"

var (
	// ErrInvalidFormData is returned when the submitted form cannot be parsed
	// or fails validation.
	ErrInvalidFormData = errors.New("dados do formulário inválidos")

	// ErrNoAuthMethod is returned when neither local accounts nor OIDC are enabled.
	ErrNoAuthMethod = errors.New("nenhum método de login disponível")

	// ErrLocalAuthDisabled is returned when email/password authentication
	// is disabled by configuration.
	ErrLocalAuthDisabled = errors.New("login local desativado")

	// ErrRegistrationDisabled is returned when self sign-up is disabled by configuration.
	ErrRegistrationDisabled = errors.New("cadastro desativado")

	// ErrInvalidCredentials is returned when the provided email and/or password
	// are not valid.
	ErrInvalidCredentials = errors.New("email ou senha inválidos")

	// ErrAccountDisabled is returned when the account was deactivated by an administrator.
	ErrAccountDisabled = errors.New("conta desativada")

	// ErrTOTPCode is returned when the account has a second factor and the code is missing or wrong.
	ErrTOTPCode = errors.New("código de verificação inválido")

	// ErrPasswordMismatch is returned when the password confirmation differs.
	ErrPasswordMismatch = errors.New("as senhas não conferem")

	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = errors.New("já existe uma conta com este email")

	// ErrInternalServerError is returned for unexpected failures during the login
	// process.
	ErrInternalServerError = errors.New("erro interno do servidor")
)
