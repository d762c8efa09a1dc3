package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/applock/applock-server/internal/config"
	"github.com/applock/applock-server/internal/logger"
	"github.com/applock/applock-server/internal/mock"
	"github.com/applock/applock-server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestTokenSvc(t *testing.T, ctrl *gomock.Controller) (*tokenService, *mock.MockTokenBlocklistRepository) {
	t.Helper()
	mockBlocklist := mock.NewMockTokenBlocklistRepository(ctrl)
	svc := NewTokenService(mockBlocklist, config.App{
		TokenSignKey:         "test-sign-key",
		TokenIssuer:          "test-issuer",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 720 * time.Hour,
	}, logger.Nop()).(*tokenService)
	return svc, mockBlocklist
}

// ── IssuePair ────────────────────────────────────────────────────────────────

func TestTokenService_IssuePair(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _ := newTestTokenSvc(t, ctrl)
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, models.TokenKindAccess, pair.Access.Kind())
	assert.Equal(t, models.TokenKindRefresh, pair.Refresh.Kind())
	assert.Equal(t, "user-1", pair.Access.UserID)
	assert.Equal(t, "user-1", pair.Refresh.UserID)
	assert.NotEqual(t, pair.Access.JTI, pair.Refresh.JTI, "tokens of a pair carry distinct jti")
	assert.True(t, pair.Refresh.ExpiresAt().After(pair.Access.ExpiresAt()), "refresh outlives access")
}

func TestTokenService_IssueAccessToken_UniqueJTI(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _ := newTestTokenSvc(t, ctrl)
	ctx := context.Background()

	first, err := svc.IssueAccessToken(ctx, "user-1")
	require.NoError(t, err)
	second, err := svc.IssueAccessToken(ctx, "user-1")
	require.NoError(t, err)

	assert.NotEqual(t, first.JTI, second.JTI)
}

// ── Verify ───────────────────────────────────────────────────────────────────

func TestTokenService_Verify_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockBlocklist := newTestTokenSvc(t, ctrl)
	ctx := context.Background()

	token, err := svc.IssueAccessToken(ctx, "user-1")
	require.NoError(t, err)

	mockBlocklist.EXPECT().IsRevoked(ctx, token.JTI).Return(false, nil)

	verified, err := svc.Verify(ctx, token.SignedString, models.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", verified.UserID)
}

func TestTokenService_Verify_RevokedTokenFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockBlocklist := newTestTokenSvc(t, ctrl)
	ctx := context.Background()

	// the token is perfectly valid on its own: signature verifies,
	// expiry is in the future
	token, err := svc.IssueAccessToken(ctx, "user-1")
	require.NoError(t, err)

	mockBlocklist.EXPECT().IsRevoked(ctx, token.JTI).Return(true, nil)

	_, err = svc.Verify(ctx, token.SignedString, models.TokenKindAccess)
	assert.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)
}

func TestTokenService_Verify_KindMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _ := newTestTokenSvc(t, ctrl)
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, "user-1")
	require.NoError(t, err)

	// a refresh token presented where an access token is required is
	// rejected before the blocklist is even consulted
	_, err = svc.Verify(ctx, pair.Refresh.SignedString, models.TokenKindAccess)
	assert.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)

	_, err = svc.Verify(ctx, pair.Access.SignedString, models.TokenKindRefresh)
	assert.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)
}

func TestTokenService_Verify_GarbageToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _ := newTestTokenSvc(t, ctrl)

	_, err := svc.Verify(context.Background(), "not.a.token", models.TokenKindAccess)
	assert.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)
}

func TestTokenService_Verify_BlocklistLookupFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockBlocklist := newTestTokenSvc(t, ctrl)
	ctx := context.Background()

	token, err := svc.IssueAccessToken(ctx, "user-1")
	require.NoError(t, err)

	mockBlocklist.EXPECT().IsRevoked(ctx, token.JTI).Return(false, errors.New("db down"))

	_, err = svc.Verify(ctx, token.SignedString, models.TokenKindAccess)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTokenIsExpiredOrInvalid, "storage faults are server errors, not rejections")
}

// ── Revoke ───────────────────────────────────────────────────────────────────

func TestTokenService_Revoke(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockBlocklist := newTestTokenSvc(t, ctrl)
	ctx := context.Background()

	token, err := svc.IssueAccessToken(ctx, "user-1")
	require.NoError(t, err)

	mockBlocklist.EXPECT().Revoke(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, revoked models.RevokedToken) error {
			assert.Equal(t, token.JTI, revoked.JTI)
			assert.WithinDuration(t, time.Now().UTC(), revoked.RevokedAt, time.Minute)
			assert.WithinDuration(t, token.ExpiresAt(), revoked.ExpiresAt, time.Second)
			return nil
		},
	)

	require.NoError(t, svc.Revoke(ctx, token.SignedString))
}

func TestTokenService_Revoke_UnparsableToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _ := newTestTokenSvc(t, ctrl)

	err := svc.Revoke(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)
}

// ── Refresh ──────────────────────────────────────────────────────────────────

func TestTokenService_Refresh_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockBlocklist := newTestTokenSvc(t, ctrl)
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, "user-1")
	require.NoError(t, err)

	mockBlocklist.EXPECT().IsRevoked(ctx, pair.Refresh.JTI).Return(false, nil)

	access, err := svc.Refresh(ctx, pair.Refresh.SignedString)
	require.NoError(t, err)
	assert.Equal(t, models.TokenKindAccess, access.Kind())
	assert.Equal(t, "user-1", access.UserID)
	assert.NotEqual(t, pair.Access.JTI, access.JTI)
}

func TestTokenService_Refresh_RejectsAccessToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _ := newTestTokenSvc(t, ctrl)
	ctx := context.Background()

	token, err := svc.IssueAccessToken(ctx, "user-1")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, token.SignedString)
	assert.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)
}

func TestTokenService_Refresh_RejectsBlocklistedRefreshToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockBlocklist := newTestTokenSvc(t, ctrl)
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, "user-1")
	require.NoError(t, err)

	mockBlocklist.EXPECT().IsRevoked(ctx, pair.Refresh.JTI).Return(true, nil)

	_, err = svc.Refresh(ctx, pair.Refresh.SignedString)
	assert.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)
}
