package store

import (
	"context"
	"time"

	"github.com/applock/applock-server/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// UserRepository is the data-access layer for user accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	FindUserByID(ctx context.Context, userID string) (models.User, error)
	UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) error
	UpdateSettings(ctx context.Context, userID string, update models.SettingsUpdate) error
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error
}

// TokenBlocklistRepository records revoked token identifiers. A jti
// present in the blocklist makes the token invalid for the remainder of
// its natural expiry, regardless of signature validity.
type TokenBlocklistRepository interface {
	// Revoke stores the revoked-token record. Idempotent: revoking an
	// already-revoked jti is not an error.
	Revoke(ctx context.Context, revoked models.RevokedToken) error

	// IsRevoked reports whether the given jti has been revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// DeleteExpired prunes records whose underlying token can no longer
	// verify by expiry. Returns the number of rows removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// CredentialRepository is the data-access layer for registered hardware
// (WebAuthn) credentials.
type CredentialRepository interface {
	CreateCredential(ctx context.Context, credential models.HardwareCredential) (models.HardwareCredential, error)
	ListByUser(ctx context.Context, userID string) ([]models.HardwareCredential, error)
	FindByCredentialID(ctx context.Context, credentialID []byte) (models.HardwareCredential, error)

	// UpdateSignCount persists the new signature counter and credential
	// blob after a successful authentication. The update is guarded so
	// the stored counter can never decrease: if the presented counter
	// did not strictly increase (zero-counter authenticators excepted),
	// ErrSignCountRegressed is returned and nothing changes.
	UpdateSignCount(ctx context.Context, credentialID []byte, signCount uint32, credentialJSON []byte, usedAt time.Time) error
}

// CeremonyKind labels the two WebAuthn ceremony flavors held in the
// transient ceremony store.
type CeremonyKind string

const (
	CeremonyKindRegistration CeremonyKind = "registration"
	CeremonyKindLogin        CeremonyKind = "login"
)

// CeremonyStore holds transient per-ceremony state between the begin and
// complete steps of a WebAuthn flow. State is keyed by (kind, user) so a
// second begin for the same user replaces the pending ceremony, and a
// completed ceremony can never be replayed.
type CeremonyStore interface {
	// SaveCeremony stores the serialized ceremony state, replacing any
	// pending state for the same (kind, user), with the configured TTL.
	SaveCeremony(ctx context.Context, kind CeremonyKind, userID string, state []byte) error

	// ConsumeCeremony atomically fetches and deletes the pending state.
	// Returns ErrCeremonyNotFound if there is none (never begun, already
	// consumed, or expired).
	ConsumeCeremony(ctx context.Context, kind CeremonyKind, userID string) ([]byte, error)
}

// Storages aggregates every persistence backend used by the services.
type Storages struct {
	UserRepository           UserRepository
	TokenBlocklistRepository TokenBlocklistRepository
	CredentialRepository     CredentialRepository
	CeremonyStore            CeremonyStore
}
