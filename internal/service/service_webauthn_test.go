package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/applock/applock-server/internal/config"
	"github.com/applock/applock-server/internal/logger"
	"github.com/applock/applock-server/internal/mock"
	"github.com/applock/applock-server/internal/store"
	"github.com/applock/applock-server/models"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testWebAuthnConfig() config.WebAuthn {
	return config.WebAuthn{
		RPID:          "localhost",
		RPDisplayName: "PC App Lock Test",
		RPOrigins:     []string{"http://localhost:8080"},
	}
}

func newTestWebAuthnSvc(t *testing.T, ctrl *gomock.Controller) (*webauthnService, *mock.MockUserRepository, *mock.MockCredentialRepository, *mock.MockCeremonyStore) {
	t.Helper()

	mockUsers := mock.NewMockUserRepository(ctrl)
	mockCredentials := mock.NewMockCredentialRepository(ctrl)
	mockCeremonies := mock.NewMockCeremonyStore(ctrl)

	svc, err := NewWebAuthnService(testWebAuthnConfig(), &store.Storages{
		UserRepository:       mockUsers,
		CredentialRepository: mockCredentials,
		CeremonyStore:        mockCeremonies,
	}, logger.Nop())
	require.NoError(t, err)

	return svc.(*webauthnService), mockUsers, mockCredentials, mockCeremonies
}

func storedCredential(t *testing.T, id []byte) models.HardwareCredential {
	t.Helper()

	raw, err := json.Marshal(webauthn.Credential{ID: id, PublicKey: []byte{0xAA}})
	require.NoError(t, err)

	return models.HardwareCredential{
		ID:             "cred-row-1",
		UserID:         "user-1",
		CredentialID:   id,
		PublicKey:      []byte{0xAA},
		CredentialJSON: raw,
	}
}

func TestNewWebAuthnService_InvalidRelyingParty(t *testing.T) {
	_, err := NewWebAuthnService(config.WebAuthn{}, &store.Storages{}, logger.Nop())
	assert.Error(t, err)
}

// ── BeginRegistration ────────────────────────────────────────────────────────

func TestWebAuthnService_BeginRegistration_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, mockCredentials, mockCeremonies := newTestWebAuthnSvc(t, ctrl)
	ctx := context.Background()

	mockUsers.EXPECT().FindUserByID(ctx, "user-1").
		Return(models.User{UserID: "user-1", Email: "john@example.com", Name: "John"}, nil)
	mockCredentials.EXPECT().ListByUser(ctx, "user-1").Return(nil, nil)
	mockCeremonies.EXPECT().SaveCeremony(ctx, store.CeremonyKindRegistration, "user-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ store.CeremonyKind, _ string, state []byte) error {
			var session webauthn.SessionData
			require.NoError(t, json.Unmarshal(state, &session))
			assert.NotEmpty(t, session.Challenge, "parked state carries the challenge")
			return nil
		})

	creation, err := svc.BeginRegistration(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, creation)
	assert.NotEmpty(t, creation.Response.Challenge)
	assert.Equal(t, "localhost", creation.Response.RelyingParty.ID)
	assert.Empty(t, creation.Response.CredentialExcludeList, "first credential excludes nothing")
}

func TestWebAuthnService_BeginRegistration_ExcludesExistingCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, mockCredentials, mockCeremonies := newTestWebAuthnSvc(t, ctrl)
	ctx := context.Background()

	existing := storedCredential(t, []byte{0x01, 0x02})

	mockUsers.EXPECT().FindUserByID(ctx, "user-1").
		Return(models.User{UserID: "user-1", Email: "john@example.com"}, nil)
	mockCredentials.EXPECT().ListByUser(ctx, "user-1").
		Return([]models.HardwareCredential{existing}, nil)
	mockCeremonies.EXPECT().SaveCeremony(ctx, store.CeremonyKindRegistration, "user-1", gomock.Any()).Return(nil)

	creation, err := svc.BeginRegistration(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, creation.Response.CredentialExcludeList, 1)
}

func TestWebAuthnService_BeginRegistration_UnknownUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, _, _ := newTestWebAuthnSvc(t, ctrl)
	ctx := context.Background()

	mockUsers.EXPECT().FindUserByID(ctx, "ghost").Return(models.User{}, store.ErrNoUserWasFound)

	_, err := svc.BeginRegistration(ctx, "ghost")
	assert.ErrorIs(t, err, store.ErrNoUserWasFound)
}

// ── FinishRegistration ───────────────────────────────────────────────────────

func TestWebAuthnService_FinishRegistration_NoPendingCeremony(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, mockCredentials, mockCeremonies := newTestWebAuthnSvc(t, ctrl)
	ctx := context.Background()

	mockUsers.EXPECT().FindUserByID(ctx, "user-1").
		Return(models.User{UserID: "user-1", Email: "john@example.com"}, nil)
	mockCredentials.EXPECT().ListByUser(ctx, "user-1").Return(nil, nil)
	mockCeremonies.EXPECT().ConsumeCeremony(ctx, store.CeremonyKindRegistration, "user-1").
		Return(nil, store.ErrCeremonyNotFound)

	_, err := svc.FinishRegistration(ctx, "user-1", []byte(`{}`))
	assert.ErrorIs(t, err, store.ErrCeremonyNotFound)
}

func TestWebAuthnService_FinishRegistration_MalformedResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, mockCredentials, mockCeremonies := newTestWebAuthnSvc(t, ctrl)
	ctx := context.Background()

	session, err := json.Marshal(webauthn.SessionData{Challenge: "challenge", UserID: []byte("user-1")})
	require.NoError(t, err)

	mockUsers.EXPECT().FindUserByID(ctx, "user-1").
		Return(models.User{UserID: "user-1", Email: "john@example.com"}, nil)
	mockCredentials.EXPECT().ListByUser(ctx, "user-1").Return(nil, nil)
	mockCeremonies.EXPECT().ConsumeCeremony(ctx, store.CeremonyKindRegistration, "user-1").
		Return(session, nil)

	_, err = svc.FinishRegistration(ctx, "user-1", []byte(`not json at all`))
	assert.ErrorIs(t, err, ErrCeremonyFailed)
}

func TestWebAuthnService_FinishRegistration_PersistsVerifiedCredential(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, mockCredentials, mockCeremonies := newTestWebAuthnSvc(t, ctrl)
	ctx := context.Background()

	session, err := json.Marshal(webauthn.SessionData{Challenge: "challenge", UserID: []byte("user-1")})
	require.NoError(t, err)

	verified := &webauthn.Credential{
		ID:            []byte{0x01, 0x02},
		PublicKey:     []byte{0xAA},
		Authenticator: webauthn.Authenticator{SignCount: 7},
	}
	svc.parseAttestation = func([]byte) (*protocol.ParsedCredentialCreationData, error) {
		return &protocol.ParsedCredentialCreationData{}, nil
	}
	svc.verifyAttestation = func(webauthn.User, webauthn.SessionData, *protocol.ParsedCredentialCreationData) (*webauthn.Credential, error) {
		return verified, nil
	}

	mockUsers.EXPECT().FindUserByID(ctx, "user-1").
		Return(models.User{UserID: "user-1", Email: "john@example.com"}, nil)
	mockCredentials.EXPECT().ListByUser(ctx, "user-1").Return(nil, nil)
	mockCeremonies.EXPECT().ConsumeCeremony(ctx, store.CeremonyKindRegistration, "user-1").
		Return(session, nil)
	mockCredentials.EXPECT().CreateCredential(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, c models.HardwareCredential) (models.HardwareCredential, error) {
			assert.NotEmpty(t, c.ID, "service must assign a row id before persisting")
			assert.Equal(t, "user-1", c.UserID)
			assert.Equal(t, []byte{0x01, 0x02}, c.CredentialID)
			assert.Equal(t, uint32(7), c.SignCount, "stored counter starts at the attested value")

			var stored webauthn.Credential
			require.NoError(t, json.Unmarshal(c.CredentialJSON, &stored))
			assert.Equal(t, verified.ID, stored.ID)
			return c, nil
		},
	)

	created, err := svc.FinishRegistration(ctx, "user-1", []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, created.CredentialID)
}

// ── BeginLogin ───────────────────────────────────────────────────────────────

func TestWebAuthnService_BeginLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, mockCredentials, mockCeremonies := newTestWebAuthnSvc(t, ctrl)
	ctx := context.Background()

	existing := storedCredential(t, []byte{0x01, 0x02})

	mockUsers.EXPECT().FindUserByEmail(ctx, "john@example.com").
		Return(models.User{UserID: "user-1", Email: "john@example.com"}, nil)
	mockCredentials.EXPECT().ListByUser(ctx, "user-1").
		Return([]models.HardwareCredential{existing}, nil)
	mockCeremonies.EXPECT().SaveCeremony(ctx, store.CeremonyKindLogin, "user-1", gomock.Any()).Return(nil)

	assertion, err := svc.BeginLogin(ctx, "john@example.com")
	require.NoError(t, err)
	require.NotNil(t, assertion)
	assert.NotEmpty(t, assertion.Response.Challenge)
	require.Len(t, assertion.Response.AllowedCredentials, 1)
}

func TestWebAuthnService_BeginLogin_EmptyEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _, _ := newTestWebAuthnSvc(t, ctrl)

	_, err := svc.BeginLogin(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
}

func TestWebAuthnService_BeginLogin_NoCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, mockCredentials, _ := newTestWebAuthnSvc(t, ctrl)
	ctx := context.Background()

	mockUsers.EXPECT().FindUserByEmail(ctx, "john@example.com").
		Return(models.User{UserID: "user-1", Email: "john@example.com"}, nil)
	mockCredentials.EXPECT().ListByUser(ctx, "user-1").Return(nil, nil)

	_, err := svc.BeginLogin(ctx, "john@example.com")
	assert.ErrorIs(t, err, store.ErrNoCredentialsRegistered)
}

func TestWebAuthnService_BeginLogin_DisabledAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, _, _ := newTestWebAuthnSvc(t, ctrl)
	ctx := context.Background()

	mockUsers.EXPECT().FindUserByEmail(ctx, "off@example.com").
		Return(models.User{UserID: "user-2", Email: "off@example.com", IsDisabled: true}, nil)

	_, err := svc.BeginLogin(ctx, "off@example.com")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// ── FinishLogin ──────────────────────────────────────────────────────────────

func TestWebAuthnService_FinishLogin_NoPendingCeremony(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, mockCredentials, mockCeremonies := newTestWebAuthnSvc(t, ctrl)
	ctx := context.Background()

	existing := storedCredential(t, []byte{0x01, 0x02})

	mockUsers.EXPECT().FindUserByEmail(ctx, "john@example.com").
		Return(models.User{UserID: "user-1", Email: "john@example.com"}, nil)
	mockCredentials.EXPECT().ListByUser(ctx, "user-1").
		Return([]models.HardwareCredential{existing}, nil)
	mockCeremonies.EXPECT().ConsumeCeremony(ctx, store.CeremonyKindLogin, "user-1").
		Return(nil, store.ErrCeremonyNotFound)

	_, err := svc.FinishLogin(ctx, "john@example.com", []byte(`{}`))
	assert.ErrorIs(t, err, store.ErrCeremonyNotFound)
}

func TestWebAuthnService_FinishLogin_MalformedResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, mockCredentials, mockCeremonies := newTestWebAuthnSvc(t, ctrl)
	ctx := context.Background()

	existing := storedCredential(t, []byte{0x01, 0x02})
	session, err := json.Marshal(webauthn.SessionData{Challenge: "challenge", UserID: []byte("user-1")})
	require.NoError(t, err)

	mockUsers.EXPECT().FindUserByEmail(ctx, "john@example.com").
		Return(models.User{UserID: "user-1", Email: "john@example.com"}, nil)
	mockCredentials.EXPECT().ListByUser(ctx, "user-1").
		Return([]models.HardwareCredential{existing}, nil)
	mockCeremonies.EXPECT().ConsumeCeremony(ctx, store.CeremonyKindLogin, "user-1").
		Return(session, nil)

	_, err = svc.FinishLogin(ctx, "john@example.com", []byte(`garbage`))
	assert.ErrorIs(t, err, ErrCeremonyFailed)
}

// finishLoginFixture wires a FinishLogin attempt up to the assertion
// verification seam: known user, one stored credential, pending ceremony.
func finishLoginFixture(t *testing.T, svc *webauthnService, mockUsers *mock.MockUserRepository, mockCredentials *mock.MockCredentialRepository, mockCeremonies *mock.MockCeremonyStore) {
	t.Helper()

	existing := storedCredential(t, []byte{0x01, 0x02})
	session, err := json.Marshal(webauthn.SessionData{Challenge: "challenge", UserID: []byte("user-1")})
	require.NoError(t, err)

	mockUsers.EXPECT().FindUserByEmail(gomock.Any(), "john@example.com").
		Return(models.User{UserID: "user-1", Email: "john@example.com"}, nil)
	mockCredentials.EXPECT().ListByUser(gomock.Any(), "user-1").
		Return([]models.HardwareCredential{existing}, nil)
	mockCeremonies.EXPECT().ConsumeCeremony(gomock.Any(), store.CeremonyKindLogin, "user-1").
		Return(session, nil)

	svc.parseAssertion = func([]byte) (*protocol.ParsedCredentialAssertionData, error) {
		return &protocol.ParsedCredentialAssertionData{}, nil
	}
}

func TestWebAuthnService_FinishLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, mockCredentials, mockCeremonies := newTestWebAuthnSvc(t, ctrl)
	ctx := context.Background()

	finishLoginFixture(t, svc, mockUsers, mockCredentials, mockCeremonies)
	svc.verifyAssertion = func(webauthn.User, webauthn.SessionData, *protocol.ParsedCredentialAssertionData) (*webauthn.Credential, error) {
		return &webauthn.Credential{
			ID:            []byte{0x01, 0x02},
			Authenticator: webauthn.Authenticator{SignCount: 9},
		}, nil
	}

	mockCredentials.EXPECT().
		UpdateSignCount(ctx, []byte{0x01, 0x02}, uint32(9), gomock.Any(), gomock.Any()).
		Return(nil)

	user, err := svc.FinishLogin(ctx, "john@example.com", []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.UserID)
}

func TestWebAuthnService_FinishLogin_CloneWarning(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, mockCredentials, mockCeremonies := newTestWebAuthnSvc(t, ctrl)
	ctx := context.Background()

	finishLoginFixture(t, svc, mockUsers, mockCredentials, mockCeremonies)
	svc.verifyAssertion = func(webauthn.User, webauthn.SessionData, *protocol.ParsedCredentialAssertionData) (*webauthn.Credential, error) {
		return &webauthn.Credential{
			ID:            []byte{0x01, 0x02},
			Authenticator: webauthn.Authenticator{SignCount: 9, CloneWarning: true},
		}, nil
	}

	// No UpdateSignCount expectation: a clone warning must abort before
	// the stored counter is touched.
	_, err := svc.FinishLogin(ctx, "john@example.com", []byte(`{}`))
	assert.ErrorIs(t, err, ErrCeremonyFailed)
}

func TestWebAuthnService_FinishLogin_SignCountRegressed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, mockCredentials, mockCeremonies := newTestWebAuthnSvc(t, ctrl)
	ctx := context.Background()

	finishLoginFixture(t, svc, mockUsers, mockCredentials, mockCeremonies)
	svc.verifyAssertion = func(webauthn.User, webauthn.SessionData, *protocol.ParsedCredentialAssertionData) (*webauthn.Credential, error) {
		return &webauthn.Credential{
			ID:            []byte{0x01, 0x02},
			Authenticator: webauthn.Authenticator{SignCount: 3},
		}, nil
	}

	mockCredentials.EXPECT().
		UpdateSignCount(ctx, []byte{0x01, 0x02}, uint32(3), gomock.Any(), gomock.Any()).
		Return(store.ErrSignCountRegressed)

	_, err := svc.FinishLogin(ctx, "john@example.com", []byte(`{}`))
	assert.ErrorIs(t, err, ErrCeremonyFailed)
}
