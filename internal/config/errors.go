package config

import "errors"

// Validation errors returned by [StructuredConfig.validate]. Several may
// be joined together when more than one required value is missing.
var (
	ErrNoTokenSignKey        = errors.New("token sign key is required")
	ErrNoTokenIssuer         = errors.New("token issuer is required")
	ErrInvalidTokenDurations = errors.New("token durations must be positive")
	ErrAccessOutlivesRefresh = errors.New("access token duration must be shorter than refresh token duration")
	ErrNoDatabaseDSN         = errors.New("database DSN is required")
	ErrNoRelyingPartyID      = errors.New("webauthn relying party ID is required")
	ErrNoRelyingPartyOrigins = errors.New("at least one webauthn origin is required")
	ErrInvalidCeremonyTTL    = errors.New("webauthn ceremony TTL must be positive")
)
