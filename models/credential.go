package models

import "time"

// HardwareCredential is a WebAuthn (FIDO2) credential registered by a
// user as a hardware-key second factor. A user owns zero or more
// credentials; each credential belongs to exactly one user.
type HardwareCredential struct {
	// ID is the opaque row identifier assigned at registration.
	ID string `json:"id"`

	// UserID is the owning user's identifier.
	UserID string `json:"userId"`

	// CredentialID is the protocol-assigned credential identifier.
	// Unique across the whole store.
	CredentialID []byte `json:"-"`

	// PublicKey is the credential's COSE-encoded public key used to
	// verify assertion signatures.
	PublicKey []byte `json:"-"`

	// SignCount is the authenticator's signature counter. It must never
	// decrease between successful authentications; a decrease indicates
	// credential cloning and the assertion must be rejected.
	SignCount uint32 `json:"signCount"`

	// Name is an optional human-readable label for the credential.
	Name string `json:"name,omitempty"`

	// CredentialJSON is the full webauthn credential record as produced
	// by the ceremony library, kept alongside the indexed columns so the
	// library sees exactly what it stored (transports, attachment,
	// backup flags).
	CredentialJSON []byte `json:"-"`

	// CreatedAt is the instant the credential was registered.
	CreatedAt time.Time `json:"createdAt"`

	// LastUsedAt is the instant of the last successful authentication,
	// nil if the credential has never been used.
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
}

// TableName returns the name of the database table
// associated with the HardwareCredential model.
func (c HardwareCredential) TableName() string {
	return "webauthn_credentials"
}
