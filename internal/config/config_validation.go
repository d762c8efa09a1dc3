package config

import "errors"

// validate checks the merged configuration for values the server cannot
// run without. Defaults cover everything else.
func (c *StructuredConfig) validate() error {
	var errs []error

	if c.App.TokenSignKey == "" {
		errs = append(errs, ErrNoTokenSignKey)
	}
	if c.App.TokenIssuer == "" {
		errs = append(errs, ErrNoTokenIssuer)
	}
	if c.App.AccessTokenDuration <= 0 || c.App.RefreshTokenDuration <= 0 {
		errs = append(errs, ErrInvalidTokenDurations)
	}
	if c.App.AccessTokenDuration >= c.App.RefreshTokenDuration {
		errs = append(errs, ErrAccessOutlivesRefresh)
	}
	if c.Storage.DB.DSN == "" {
		errs = append(errs, ErrNoDatabaseDSN)
	}
	if c.WebAuthn.RPID == "" {
		errs = append(errs, ErrNoRelyingPartyID)
	}
	if len(c.WebAuthn.RPOrigins) == 0 {
		errs = append(errs, ErrNoRelyingPartyOrigins)
	}
	if c.WebAuthn.CeremonyTTL <= 0 {
		errs = append(errs, ErrInvalidCeremonyTTL)
	}

	return errors.Join(errs...)
}
