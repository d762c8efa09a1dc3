package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"

	"github.com/applock/applock-server/internal/config"
	"github.com/applock/applock-server/internal/logger"
	"github.com/applock/applock-server/internal/store"
	"github.com/applock/applock-server/internal/utils"
	"github.com/applock/applock-server/models"
)

// webauthnService drives the two-phase hardware-key ceremonies on top of
// the go-webauthn library.
//
// Transient challenge state lives in the CeremonyStore keyed by
// (kind, user): beginning a second ceremony of the same kind replaces
// the first, and finishing one consumes the state atomically, so a
// challenge can never be answered twice.
type webauthnService struct {
	web         *webauthn.WebAuthn
	users       store.UserRepository
	credentials store.CredentialRepository
	ceremonies  store.CeremonyStore
	idGenerator *utils.UUIDGenerator
	logger      *logger.Logger

	// Finish-step seams. The constructor points them at the protocol
	// parsers and the relying party's verifiers; tests substitute fakes
	// to reach the persist and rejection branches.
	parseAttestation  func([]byte) (*protocol.ParsedCredentialCreationData, error)
	verifyAttestation func(webauthn.User, webauthn.SessionData, *protocol.ParsedCredentialCreationData) (*webauthn.Credential, error)
	parseAssertion    func([]byte) (*protocol.ParsedCredentialAssertionData, error)
	verifyAssertion   func(webauthn.User, webauthn.SessionData, *protocol.ParsedCredentialAssertionData) (*webauthn.Credential, error)
}

// NewWebAuthnService constructs a WebAuthnService with the relying-party
// identity taken from cfg. Returns an error if the relying-party
// configuration is rejected by the ceremony library.
func NewWebAuthnService(cfg config.WebAuthn, storages *store.Storages, logger *logger.Logger) (WebAuthnService, error) {
	web, err := webauthn.New(&webauthn.Config{
		RPDisplayName: cfg.RPDisplayName,
		RPID:          cfg.RPID,
		RPOrigins:     cfg.RPOrigins,
	})
	if err != nil {
		return nil, fmt.Errorf("webauthn relying party init: %w", err)
	}

	return &webauthnService{
		web:         web,
		users:       storages.UserRepository,
		credentials: storages.CredentialRepository,
		ceremonies:  storages.CeremonyStore,
		idGenerator: utils.NewUUIDGenerator(),
		logger:      logger,

		parseAttestation:  protocol.ParseCredentialCreationResponseBytes,
		verifyAttestation: web.CreateCredential,
		parseAssertion:    protocol.ParseCredentialRequestResponseBytes,
		verifyAssertion:   web.ValidateLogin,
	}, nil
}

// webauthnUser adapts a stored user and their registered credentials to
// the interface the ceremony library expects.
type webauthnUser struct {
	user        models.User
	credentials []webauthn.Credential
}

func (u *webauthnUser) WebAuthnID() []byte {
	return []byte(u.user.UserID)
}

func (u *webauthnUser) WebAuthnName() string {
	return u.user.Email
}

func (u *webauthnUser) WebAuthnDisplayName() string {
	return u.user.Name
}

func (u *webauthnUser) WebAuthnIcon() string {
	return ""
}

func (u *webauthnUser) WebAuthnCredentials() []webauthn.Credential {
	return u.credentials
}

// loadWebAuthnUser fetches the user's registered credentials and decodes
// the stored library-native records.
func (w *webauthnService) loadWebAuthnUser(ctx context.Context, user models.User) (*webauthnUser, error) {
	records, err := w.credentials.ListByUser(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}

	creds := make([]webauthn.Credential, 0, len(records))
	for _, record := range records {
		var cred webauthn.Credential
		if err := json.Unmarshal(record.CredentialJSON, &cred); err != nil {
			return nil, fmt.Errorf("decode stored credential %s: %w", record.ID, err)
		}
		creds = append(creds, cred)
	}

	return &webauthnUser{user: user, credentials: creds}, nil
}

// saveCeremony serializes the library session data into the ceremony
// store under (kind, user).
func (w *webauthnService) saveCeremony(ctx context.Context, kind store.CeremonyKind, userID string, session *webauthn.SessionData) error {
	state, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode ceremony state: %w", err)
	}
	return w.ceremonies.SaveCeremony(ctx, kind, userID, state)
}

// consumeCeremony atomically fetches-and-deletes the pending session
// data for (kind, user). A missing, expired, or already-consumed
// ceremony surfaces store.ErrCeremonyNotFound.
func (w *webauthnService) consumeCeremony(ctx context.Context, kind store.CeremonyKind, userID string) (webauthn.SessionData, error) {
	state, err := w.ceremonies.ConsumeCeremony(ctx, kind, userID)
	if err != nil {
		return webauthn.SessionData{}, err
	}

	var session webauthn.SessionData
	if err := json.Unmarshal(state, &session); err != nil {
		return webauthn.SessionData{}, fmt.Errorf("decode ceremony state: %w", err)
	}
	return session, nil
}

// BeginRegistration opens a credential-registration ceremony for an
// authenticated user and returns the creation options to hand to the
// client. Already-registered credentials are excluded so the
// authenticator refuses to re-register itself.
func (w *webauthnService) BeginRegistration(ctx context.Context, userID string) (*protocol.CredentialCreation, error) {
	user, err := w.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	webUser, err := w.loadWebAuthnUser(ctx, user)
	if err != nil {
		return nil, err
	}

	var opts []webauthn.RegistrationOption
	if len(webUser.credentials) > 0 {
		opts = append(opts, webauthn.WithExclusions(webauthn.Credentials(webUser.credentials).CredentialDescriptors()))
	}

	creation, session, err := w.web.BeginRegistration(webUser, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: begin registration: %w", ErrCeremonyFailed, err)
	}

	if err := w.saveCeremony(ctx, store.CeremonyKindRegistration, userID, session); err != nil {
		return nil, err
	}

	return creation, nil
}

// FinishRegistration verifies the authenticator's attestation response
// against the pending registration ceremony and persists the new
// credential. The pending state is consumed before verification, so a
// failed attempt requires a fresh begin step.
func (w *webauthnService) FinishRegistration(ctx context.Context, userID string, response []byte) (models.HardwareCredential, error) {
	log := logger.FromContext(ctx)

	user, err := w.users.FindUserByID(ctx, userID)
	if err != nil {
		return models.HardwareCredential{}, err
	}

	webUser, err := w.loadWebAuthnUser(ctx, user)
	if err != nil {
		return models.HardwareCredential{}, err
	}

	session, err := w.consumeCeremony(ctx, store.CeremonyKindRegistration, userID)
	if err != nil {
		return models.HardwareCredential{}, err
	}

	parsed, err := w.parseAttestation(response)
	if err != nil {
		log.Debug().Err(err).Msg("malformed attestation response")
		return models.HardwareCredential{}, fmt.Errorf("%w: parse attestation response: %w", ErrCeremonyFailed, err)
	}

	cred, err := w.verifyAttestation(webUser, session, parsed)
	if err != nil {
		log.Debug().Err(err).Msg("attestation verification failed")
		return models.HardwareCredential{}, fmt.Errorf("%w: verify attestation: %w", ErrCeremonyFailed, err)
	}

	credJSON, err := json.Marshal(cred)
	if err != nil {
		return models.HardwareCredential{}, fmt.Errorf("encode credential: %w", err)
	}

	created, err := w.credentials.CreateCredential(ctx, models.HardwareCredential{
		ID:             w.idGenerator.Generate(),
		UserID:         userID,
		CredentialID:   cred.ID,
		PublicKey:      cred.PublicKey,
		SignCount:      cred.Authenticator.SignCount,
		CredentialJSON: credJSON,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		return models.HardwareCredential{}, err
	}

	log.Info().Str("user_id", userID).Str("credential", created.ID).Msg("hardware credential registered")
	return created, nil
}

// BeginLogin opens an authentication ceremony for the user claimed by
// email and returns the assertion options to hand to the client. The
// claimed user is fixed at this step; the finish step verifies against
// the same user's credentials.
//
// A user with no registered credentials cannot begin:
// store.ErrNoCredentialsRegistered is returned. An unknown email
// surfaces store.ErrNoUserWasFound, and a disabled account
// ErrInvalidCredentials.
func (w *webauthnService) BeginLogin(ctx context.Context, email string) (*protocol.CredentialAssertion, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidDataProvided)
	}

	user, err := w.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.IsDisabled {
		logger.FromContext(ctx).Debug().Str("user_id", user.UserID).Msg("hardware login rejected: account disabled")
		return nil, ErrInvalidCredentials
	}

	webUser, err := w.loadWebAuthnUser(ctx, user)
	if err != nil {
		return nil, err
	}
	if len(webUser.credentials) == 0 {
		return nil, store.ErrNoCredentialsRegistered
	}

	assertion, session, err := w.web.BeginLogin(webUser)
	if err != nil {
		return nil, fmt.Errorf("%w: begin login: %w", ErrCeremonyFailed, err)
	}

	if err := w.saveCeremony(ctx, store.CeremonyKindLogin, user.UserID, session); err != nil {
		return nil, err
	}

	return assertion, nil
}

// FinishLogin verifies the authenticator's assertion response against the
// pending login ceremony for the claimed user and returns that user on
// success.
//
// The stored signature counter is advanced under a guard that refuses
// any non-increasing value, so a cloned authenticator replaying an old
// counter is rejected even when two assertions race. A clone warning
// from the library likewise aborts without touching the counter.
func (w *webauthnService) FinishLogin(ctx context.Context, email string, response []byte) (models.User, error) {
	log := logger.FromContext(ctx)

	user, err := w.users.FindUserByEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}

	webUser, err := w.loadWebAuthnUser(ctx, user)
	if err != nil {
		return models.User{}, err
	}

	session, err := w.consumeCeremony(ctx, store.CeremonyKindLogin, user.UserID)
	if err != nil {
		return models.User{}, err
	}

	parsed, err := w.parseAssertion(response)
	if err != nil {
		log.Debug().Err(err).Msg("malformed assertion response")
		return models.User{}, fmt.Errorf("%w: parse assertion response: %w", ErrCeremonyFailed, err)
	}

	cred, err := w.verifyAssertion(webUser, session, parsed)
	if err != nil {
		log.Debug().Err(err).Msg("assertion verification failed")
		return models.User{}, fmt.Errorf("%w: verify assertion: %w", ErrCeremonyFailed, err)
	}

	if cred.Authenticator.CloneWarning {
		log.Warn().Str("user_id", user.UserID).Msg("authenticator clone warning, assertion rejected")
		return models.User{}, fmt.Errorf("%w: signature counter indicates a cloned authenticator", ErrCeremonyFailed)
	}

	credJSON, err := json.Marshal(cred)
	if err != nil {
		return models.User{}, fmt.Errorf("encode credential: %w", err)
	}

	err = w.credentials.UpdateSignCount(ctx, cred.ID, cred.Authenticator.SignCount, credJSON, time.Now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrSignCountRegressed) {
			log.Warn().Str("user_id", user.UserID).Msg("signature counter regressed, assertion rejected")
			return models.User{}, fmt.Errorf("%w: signature counter regressed", ErrCeremonyFailed)
		}
		return models.User{}, err
	}

	log.Info().Str("user_id", user.UserID).Msg("hardware credential login succeeded")
	return user, nil
}
