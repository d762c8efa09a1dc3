package service

import "errors"

var (
	// ErrInvalidDataProvided is returned when a request is missing
	// required fields or carries malformed values.
	ErrInvalidDataProvided = errors.New("invalid data provided")

	// ErrInvalidCredentials is returned for both unknown email and wrong
	// password. The two cases are indistinguishable to
	// callers so account existence cannot be probed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenIsExpiredOrInvalid is the single error surfaced for every
	// token rejection: bad signature, expiry, kind mismatch, or a
	// blocklisted jti. Callers never learn which check failed.
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")

	// ErrTokenCreationFailed is returned when signing a new token fails.
	ErrTokenCreationFailed = errors.New("token creation failed")

	// ErrCeremonyFailed is the single error surfaced for every WebAuthn
	// validation failure: challenge mismatch, origin mismatch, signature
	// failure, replayed or expired ceremony state, or a signature
	// counter that did not increase. Internal logs record the specific
	// cause; callers do not.
	ErrCeremonyFailed = errors.New("ceremony failed")
)
