package http

import "errors"

// Sentinel errors produced while extracting the bearer token from the
// "Authorization" header. All of them render as 401 in the error mapper.
var (
	// ErrEmptyAuthorizationHeader signals that the request carried no
	// "Authorization" header at all.
	ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")

	// ErrInvalidAuthorizationHeader signals a header that cannot be split
	// into a scheme and a token part.
	ErrInvalidAuthorizationHeader = errors.New("invalid `Authorization` header")

	// ErrEmptyToken signals a header whose token part is an empty string.
	ErrEmptyToken = errors.New("empty token in `Authorization` header")
)
