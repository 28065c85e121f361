package service

import "errors"

// Sentinel errors returned by the service layer. Handlers match them with
// [errors.Is] to pick the HTTP status; none of them leaks whether a username
// exists or which part of a proof failed.
var (
	ErrInvalidDataProvided = errors.New("invalid data provided")

	// ErrAuthenticationFailed covers every verification failure of an SRP
	// exchange: unknown username, bad client proof, illegal public value or
	// a wrong second-factor code. Deliberately indistinguishable.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrTwoFactorRequired is returned when the SRP proof verified but the
	// account has a second factor enrolled and no code was supplied. No
	// tokens are issued; the client must restart the exchange with a code.
	ErrTwoFactorRequired = errors.New("two-factor code required")

	// ErrLoginSessionExpired is returned when the attempt ID of a validate
	// call is unknown, already consumed, or past its TTL.
	ErrLoginSessionExpired = errors.New("login session expired")

	ErrTokenExpired = errors.New("token is expired")
	ErrTokenInvalid = errors.New("token is invalid")

	ErrTokenCreationFailed = errors.New("token creation failed")
)
