package service

import (
	"context"

	"github.com/applock/applock-server/models"
	"github.com/go-webauthn/webauthn/protocol"
)

// AuthService covers password-based account creation and verification.
type AuthService interface {
	RegisterUser(ctx context.Context, email, password, name string) (models.User, error)
	Login(ctx context.Context, email, password string) (models.User, error)
}

// TokenService issues, verifies, revokes, and refreshes the signed
// session tokens. Verification always consults the revocation blocklist.
type TokenService interface {
	IssuePair(ctx context.Context, userID string) (models.TokenPair, error)
	IssueAccessToken(ctx context.Context, userID string) (models.Token, error)
	Verify(ctx context.Context, tokenString string, requiredKind models.TokenKind) (models.Token, error)
	Revoke(ctx context.Context, tokenString string) error
	Refresh(ctx context.Context, refreshTokenString string) (models.Token, error)
}

// UserService covers the authenticated user's own record: profile reads
// and updates, settings, and explicit password change.
type UserService interface {
	GetUser(ctx context.Context, userID string) (models.User, error)
	UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (models.User, error)
	UpdateSettings(ctx context.Context, userID string, update models.SettingsUpdate) (models.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

// WebAuthnService drives the two-phase hardware-key ceremonies. Each
// begin step produces challenge options for the client and parks the
// transient ceremony state server-side; each finish step consumes that
// state exactly once.
type WebAuthnService interface {
	BeginRegistration(ctx context.Context, userID string) (*protocol.CredentialCreation, error)
	FinishRegistration(ctx context.Context, userID string, response []byte) (models.HardwareCredential, error)
	BeginLogin(ctx context.Context, email string) (*protocol.CredentialAssertion, error)
	FinishLogin(ctx context.Context, email string, response []byte) (models.User, error)
}
