package service

import (
	"context"
	"fmt"
	"time"

	"github.com/applock/applock-server/internal/config"
	"github.com/applock/applock-server/internal/logger"
	"github.com/applock/applock-server/internal/store"
	"github.com/applock/applock-server/internal/utils"
	"github.com/applock/applock-server/models"
)

// tokenService is the concrete implementation of TokenService.
//
// It issues HMAC-SHA256 signed JWTs carrying a per-token jti and a kind
// marker, and consults the TokenBlocklistRepository on every
// verification, so a revoked token is rejected for the remainder of its
// natural expiry no matter how valid its signature is.
type tokenService struct {
	// blocklist records revoked jti values and answers the mandatory
	// per-call revocation lookup.
	blocklist store.TokenBlocklistRepository

	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	// Tokens whose issuer does not match this value are rejected during parsing.
	tokenIssuer string

	// accessDuration and refreshDuration control the lifetimes of the
	// two token kinds. Access tokens are short-lived; refresh tokens
	// long-lived.
	accessDuration  time.Duration
	refreshDuration time.Duration

	// logger is the structured logger used for diagnostic and error output.
	logger *logger.Logger
}

// NewTokenService constructs a TokenService wired to the given blocklist
// repository and populated with security parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only
// after construction.
func NewTokenService(blocklist store.TokenBlocklistRepository, cfg config.App, logger *logger.Logger) TokenService {
	return &tokenService{
		blocklist:       blocklist,
		tokenSignKey:    cfg.TokenSignKey,
		tokenIssuer:     cfg.TokenIssuer,
		accessDuration:  cfg.AccessTokenDuration,
		refreshDuration: cfg.RefreshTokenDuration,
		logger:          logger,
	}
}

// IssueAccessToken issues a signed short-lived access token for the user.
// Every issuance carries a fresh jti, so two tokens for the same user
// never collide.
func (t *tokenService) IssueAccessToken(ctx context.Context, userID string) (models.Token, error) {
	token, err := utils.GenerateJWTToken(t.tokenIssuer, userID, models.TokenKindAccess, t.accessDuration, t.tokenSignKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// IssuePair issues a fresh access/refresh token pair for the user, as
// returned by a successful login.
func (t *tokenService) IssuePair(ctx context.Context, userID string) (models.TokenPair, error) {
	access, err := t.IssueAccessToken(ctx, userID)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := utils.GenerateJWTToken(t.tokenIssuer, userID, models.TokenKindRefresh, t.refreshDuration, t.tokenSignKey)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Verify validates a raw JWT string and returns the decoded token.
//
// The checks, in order: signature and expiry (with the configured
// issuer), the kind marker against requiredKind, and finally the
// revocation blocklist by jti. The blocklist lookup runs on every call,
// not just at issuance.
//
// Every rejection is normalised to ErrTokenIsExpiredOrInvalid so callers
// cannot distinguish an expired token from a forged or revoked one.
// Internal logs record the specific cause. Storage failures during the
// blocklist lookup are wrapped and surfaced separately, since they are
// server faults rather than rejections.
func (t *tokenService) Verify(ctx context.Context, tokenString string, requiredKind models.TokenKind) (models.Token, error) {
	log := logger.FromContext(ctx)

	token, err := utils.ValidateAndParseJWTToken(tokenString, t.tokenSignKey, t.tokenIssuer)
	if err != nil {
		log.Debug().Err(err).Msg("token failed signature or claim validation")
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	if token.Kind() != requiredKind {
		log.Debug().
			Str("kind", string(token.Kind())).
			Str("required", string(requiredKind)).
			Msg("token kind mismatch")
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	revoked, err := t.blocklist.IsRevoked(ctx, token.JTI)
	if err != nil {
		log.Err(err).Msg("blocklist lookup failed")
		return models.Token{}, fmt.Errorf("blocklist lookup failed: %w", err)
	}
	if revoked {
		log.Debug().Str("jti", token.JTI).Msg("token jti is blocklisted")
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}

// Revoke extracts the jti from the presented token and records a
// revoked-token entry at the current UTC instant, together with the
// token's natural expiry so the blocklist can be pruned later.
//
// Revoking an already-revoked jti is not an error. A token that fails
// parsing cannot be revoked and surfaces ErrTokenIsExpiredOrInvalid.
func (t *tokenService) Revoke(ctx context.Context, tokenString string) error {
	log := logger.FromContext(ctx)

	token, err := utils.ValidateAndParseJWTToken(tokenString, t.tokenSignKey, t.tokenIssuer)
	if err != nil {
		log.Debug().Err(err).Msg("cannot revoke unparsable token")
		return ErrTokenIsExpiredOrInvalid
	}

	return t.blocklist.Revoke(ctx, models.RevokedToken{
		JTI:       token.JTI,
		RevokedAt: time.Now().UTC(),
		ExpiresAt: token.ExpiresAt(),
	})
}

// Refresh verifies the presented token as kind=refresh (including the
// blocklist lookup) and issues a brand-new access token for the same
// user. The refresh token itself is neither rotated nor revoked; it can
// mint access tokens until its own expiry.
func (t *tokenService) Refresh(ctx context.Context, refreshTokenString string) (models.Token, error) {
	refreshToken, err := t.Verify(ctx, refreshTokenString, models.TokenKindRefresh)
	if err != nil {
		return models.Token{}, err
	}

	return t.IssueAccessToken(ctx, refreshToken.UserID)
}
