package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/applock/applock-server/internal/logger"
	"github.com/applock/applock-server/internal/utils"
	"github.com/applock/applock-server/models"
)

// auth is an HTTP middleware that enforces bearer-token authentication.
//
// It inspects the incoming "Authorization" header, extracts the bearer
// token, and verifies it as an access token via
// [service.TokenService.Verify], which includes the revocation-blocklist
// lookup. On success the authenticated user's ID and the raw token are
// stored in the request context under [utils.UserIDCtxKey] and
// [utils.AccessTokenCtxKey] before delegating to the next handler.
//
// The middleware rejects requests with HTTP 401 Unauthorized in the
// following cases:
//   - The "Authorization" header is absent ([ErrEmptyAuthorizationHeader]).
//   - The header value cannot be parsed as a bearer token
//     ([ErrInvalidAuthorizationHeader] or [ErrEmptyToken]).
//   - The token is expired, malformed, of the wrong kind, or revoked.
//
// All rejection events are logged using the context-scoped logger obtained
// via [logger.FromRequest].
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Debug().Msg("missing authorization header")
			respondError(w, r, ErrEmptyAuthorizationHeader)
			return
		}

		tokenString, err := getTokenFromAuthHeader(authHeader)
		if err != nil {
			log.Debug().Err(err).Msg("malformed authorization header")
			respondError(w, r, err)
			return
		}

		ctx := r.Context()
		token, err := h.services.TokenService.Verify(ctx, tokenString, models.TokenKindAccess)
		if err != nil {
			respondError(w, r, err)
			return
		}

		// Store the authenticated user's ID and the raw token in the
		// context so downstream handlers can use them without re-parsing.
		// Logout needs the original compact token to revoke its jti.
		ctx = context.WithValue(ctx, utils.UserIDCtxKey, token.UserID)
		ctx = context.WithValue(ctx, utils.AccessTokenCtxKey, token.SignedString)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// getTokenFromAuthHeader extracts the bearer token string from a raw
// "Authorization" HTTP header value.
//
// The header is expected to follow the standard format:
//
//	Authorization: <scheme> <token>
//
// It returns the following sentinel errors:
//   - [ErrInvalidAuthorizationHeader] if the header contains fewer than
//     two space-separated parts (i.e. the token is missing entirely).
//   - [ErrEmptyToken] if the second part exists but is an empty string.
func getTokenFromAuthHeader(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) < 2 {
		return "", ErrInvalidAuthorizationHeader
	}

	tokenString := parts[1]
	if tokenString == "" {
		return "", ErrEmptyToken
	}

	return tokenString, nil
}
