// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys,
// HTTP response writing, JWT token generation and validation,
// password hashing, and other common operations.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// UserIDCtxKey is the key used to store the authenticated user's
// identifier in the context. Used together with GetUserIDFromContext
// for type-safe retrieval.
//
// Example of writing a value to the context:
//
//	ctx := context.WithValue(ctx, utils.UserIDCtxKey, "0198c...")
var UserIDCtxKey = contextKey("userID")

// AccessTokenCtxKey is the key used to store the raw access token of the
// current request. The logout handler needs the original compact token
// to extract its jti for revocation.
var AccessTokenCtxKey = contextKey("accessToken")

// GetUserIDFromContext retrieves the user identifier from the context.
//
// Returns the user ID and an ok flag:
//   - ok == true: value is found and has the correct string type
//   - ok == false: value is missing or has an unexpected type
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok
}

// GetAccessTokenFromContext retrieves the raw access token stored by the
// auth middleware, with the same ok-flag semantics as
// GetUserIDFromContext.
func GetAccessTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(AccessTokenCtxKey).(string)
	return token, ok
}
