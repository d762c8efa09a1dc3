package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/applock/applock-server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// GenerateJWTToken creates a signed HMAC-SHA256 JWT token of the given kind.
//
// The token includes the following claims:
//   - Issuer    (iss): identifies the service that issued the token
//   - Subject   (sub): the user ID
//   - ID        (jti): a fresh UUID, unique per issuance; the handle used
//     by the revocation blocklist
//   - IssuedAt  (iat): the current time
//   - ExpiresAt (exp): the current time plus tokenDuration
//   - kind           : "access" or "refresh", so a refresh token can never
//     be used where an access token is required
//
// All parameters are required. Returns an error if any of them are empty
// or zero.
func GenerateJWTToken(issuer, userID string, kind models.TokenKind, tokenDuration time.Duration, signKey string) (models.Token, error) {
	if issuer == "" || userID == "" || kind == "" || tokenDuration == 0 || signKey == "" {
		return models.Token{}, errors.New("invalid params for generating JWT Token")
	}

	now := time.Now()
	jti := uuid.NewString()
	claims := models.TokenClaims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(signKey))
	if err != nil {
		return models.Token{}, fmt.Errorf("error occurred during signing JWT token: %w", err)
	}

	return models.Token{
		Token:        token,
		Claims:       claims,
		SignedString: tokenString,
		UserID:       userID,
		JTI:          jti,
	}, nil
}

// ValidateAndParseJWTToken validates the given JWT token string and
// extracts its claims.
//
// Validation includes:
//   - Signature verification using the provided sign key (HS256 only;
//     tokens signed with any other method are rejected)
//   - Issuer (iss) claim check against the provided tokenIssuer
//   - Expiration (exp) claim check
//   - Subject (sub) and ID (jti) claim presence
//
// Returns the decoded token model on success or a non-nil error if
// validation fails or claims are missing. The blocklist lookup is the
// caller's responsibility; this function checks only the token itself.
func ValidateAndParseJWTToken(tokenString, tokenSignKey, tokenIssuer string) (models.Token, error) {
	claims := &models.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte(tokenSignKey), nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return models.Token{}, fmt.Errorf("error occurred validating and parsing token: %w", err)
	}

	if claims.Subject == "" {
		return models.Token{}, errors.New("empty subject claim")
	}
	if claims.ID == "" {
		return models.Token{}, errors.New("empty jti claim")
	}

	return models.Token{
		Token:        token,
		Claims:       *claims,
		SignedString: tokenString,
		UserID:       claims.Subject,
		JTI:          claims.ID,
	}, nil
}
