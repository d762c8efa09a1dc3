package service

import (
	"github.com/applock/applock-server/internal/config"
	"github.com/applock/applock-server/internal/logger"
	"github.com/applock/applock-server/internal/store"
)

// Services aggregates every business-logic service the HTTP surface
// depends on.
type Services struct {
	AuthService     AuthService
	TokenService    TokenService
	UserService     UserService
	WebAuthnService WebAuthnService
}

// NewServices wires all services on top of the given storages using the
// application and relying-party sections of the configuration.
func NewServices(storages *store.Storages, cfg *config.StructuredConfig, log *logger.Logger) (*Services, error) {
	webauthnService, err := NewWebAuthnService(cfg.WebAuthn, storages, log)
	if err != nil {
		return nil, err
	}

	return &Services{
		AuthService:     NewAuthService(storages.UserRepository, log),
		TokenService:    NewTokenService(storages.TokenBlocklistRepository, cfg.App, log),
		UserService:     NewUserService(storages.UserRepository, log),
		WebAuthnService: webauthnService,
	}, nil
}
