package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind distinguishes access tokens from refresh tokens.
// The kind is embedded as a claim so that a refresh token can never be
// presented where an access token is required and vice versa.
type TokenKind string

const (
	// TokenKindAccess marks short-lived tokens used on every protected call.
	TokenKindAccess TokenKind = "access"

	// TokenKindRefresh marks long-lived tokens accepted only by the
	// refresh endpoint.
	TokenKindRefresh TokenKind = "refresh"
)

// TokenClaims is the JWT claim set carried by every issued token.
//
// It extends the standard registered claims (iss, sub, iat, exp, jti)
// with a Kind marker. The jti claim is a fresh UUID per issuance and is
// the handle used by the revocation blocklist.
type TokenClaims struct {
	// Kind distinguishes access from refresh tokens.
	Kind TokenKind `json:"kind"`

	jwt.RegisteredClaims
}

// Token wraps a parsed or freshly issued JWT with convenience accessors
// for authentication flows.
//
// SignedString holds the compact serialized form of the token
// (header.payload.signature) ready to be transmitted in HTTP headers.
// UserID and JTI are cached copies of the "sub" and "jti" claims so that
// callers do not re-parse the claim set.
type Token struct {
	// Token is the underlying JWT used for signing and claim inspection.
	// Only the compact string form is meaningful outside the server.
	*jwt.Token `json:"-"`

	// Claims is the decoded claim set of the token.
	Claims TokenClaims `json:"-"`

	// SignedString is the compact JWS representation of the token.
	SignedString string `json:"-"`

	// UserID is the owner identifier extracted from the "sub" claim.
	UserID string `json:"-"`

	// JTI is the unique per-token identifier extracted from the "jti" claim.
	JTI string `json:"-"`
}

// Kind returns the token-kind marker carried in the claims.
func (t *Token) Kind() TokenKind {
	return t.Claims.Kind
}

// ExpiresAt returns the token's natural expiry instant, or the zero time
// if the exp claim is absent.
func (t *Token) ExpiresAt() time.Time {
	if t.Claims.RegisteredClaims.ExpiresAt == nil {
		return time.Time{}
	}
	return t.Claims.RegisteredClaims.ExpiresAt.Time
}

// String returns the compact JWS serialization of the token.
// It implements the [fmt.Stringer] interface.
func (t *Token) String() string {
	return t.SignedString
}

// TokenPair bundles the access and refresh tokens issued together at
// login time.
type TokenPair struct {
	Access  Token
	Refresh Token
}

// RevokedToken maps a token's unique identifier to the instant it was
// revoked. ExpiresAt carries the token's natural expiry so that the
// blocklist can be pruned once the token could no longer verify anyway.
type RevokedToken struct {
	// JTI is the unique identifier of the revoked token.
	JTI string

	// RevokedAt is the UTC instant the token was revoked.
	RevokedAt time.Time

	// ExpiresAt is the token's natural expiry instant.
	ExpiresAt time.Time
}

// TableName returns the name of the database table
// associated with the RevokedToken model.
func (r RevokedToken) TableName() string {
	return "token_blocklist"
}
