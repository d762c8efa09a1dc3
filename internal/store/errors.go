package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrEmailAlreadyExists is returned when an attempt to register a new user
	// fails because a user with the same email already exists in the database.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrNoUserWasFound is returned when a query expected to match at least one
	// user record produces an empty result set.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrCredentialAlreadyExists is returned when registering a hardware
	// credential whose protocol-assigned credential ID is already stored.
	ErrCredentialAlreadyExists = errors.New("credential already exists")

	// ErrCredentialNotFound is returned when a lookup by credential ID
	// produces no record.
	ErrCredentialNotFound = errors.New("credential was not found")

	// ErrNoCredentialsRegistered is returned when a user has no hardware
	// credentials at all and the operation requires at least one.
	ErrNoCredentialsRegistered = errors.New("no credentials registered")

	// ErrSignCountRegressed is returned when a signature-counter update is
	// rejected because the presented counter did not strictly increase.
	// This indicates a possible cloned authenticator.
	ErrSignCountRegressed = errors.New("signature counter did not increase")

	// ErrCeremonyNotFound is returned when a pending ceremony state is
	// absent: never begun, already consumed, or expired.
	ErrCeremonyNotFound = errors.New("no pending ceremony was found")
)
