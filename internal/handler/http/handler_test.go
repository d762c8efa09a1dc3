package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/applock/applock-server/internal/logger"
	"github.com/applock/applock-server/internal/service"
	"github.com/applock/applock-server/internal/utils"
	"github.com/applock/applock-server/models"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─────────────────────────────────────────────
// Mock services
// ─────────────────────────────────────────────

// mockAuthService implements service.AuthService for unit tests.
// Each method field can be overridden per test case.
type mockAuthService struct {
	registerUserFn func(ctx context.Context, email, password, name string) (models.User, error)
	loginFn        func(ctx context.Context, email, password string) (models.User, error)
}

func (m *mockAuthService) RegisterUser(ctx context.Context, email, password, name string) (models.User, error) {
	return m.registerUserFn(ctx, email, password, name)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (models.User, error) {
	return m.loginFn(ctx, email, password)
}

// mockTokenService implements service.TokenService for unit tests.
type mockTokenService struct {
	issuePairFn   func(ctx context.Context, userID string) (models.TokenPair, error)
	issueAccessFn func(ctx context.Context, userID string) (models.Token, error)
	verifyFn      func(ctx context.Context, tokenString string, requiredKind models.TokenKind) (models.Token, error)
	revokeFn      func(ctx context.Context, tokenString string) error
	refreshFn     func(ctx context.Context, refreshTokenString string) (models.Token, error)
}

func (m *mockTokenService) IssuePair(ctx context.Context, userID string) (models.TokenPair, error) {
	return m.issuePairFn(ctx, userID)
}

func (m *mockTokenService) IssueAccessToken(ctx context.Context, userID string) (models.Token, error) {
	return m.issueAccessFn(ctx, userID)
}

func (m *mockTokenService) Verify(ctx context.Context, tokenString string, requiredKind models.TokenKind) (models.Token, error) {
	return m.verifyFn(ctx, tokenString, requiredKind)
}

func (m *mockTokenService) Revoke(ctx context.Context, tokenString string) error {
	return m.revokeFn(ctx, tokenString)
}

func (m *mockTokenService) Refresh(ctx context.Context, refreshTokenString string) (models.Token, error) {
	return m.refreshFn(ctx, refreshTokenString)
}

// mockUserService implements service.UserService for unit tests.
type mockUserService struct {
	getUserFn        func(ctx context.Context, userID string) (models.User, error)
	updateProfileFn  func(ctx context.Context, userID string, update models.ProfileUpdate) (models.User, error)
	updateSettingsFn func(ctx context.Context, userID string, update models.SettingsUpdate) (models.User, error)
	changePasswordFn func(ctx context.Context, userID, currentPassword, newPassword string) error
}

func (m *mockUserService) GetUser(ctx context.Context, userID string) (models.User, error) {
	return m.getUserFn(ctx, userID)
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (models.User, error) {
	return m.updateProfileFn(ctx, userID, update)
}

func (m *mockUserService) UpdateSettings(ctx context.Context, userID string, update models.SettingsUpdate) (models.User, error) {
	return m.updateSettingsFn(ctx, userID, update)
}

func (m *mockUserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	return m.changePasswordFn(ctx, userID, currentPassword, newPassword)
}

// mockWebAuthnService implements service.WebAuthnService for unit tests.
type mockWebAuthnService struct {
	beginRegistrationFn  func(ctx context.Context, userID string) (*protocol.CredentialCreation, error)
	finishRegistrationFn func(ctx context.Context, userID string, response []byte) (models.HardwareCredential, error)
	beginLoginFn         func(ctx context.Context, email string) (*protocol.CredentialAssertion, error)
	finishLoginFn        func(ctx context.Context, email string, response []byte) (models.User, error)
}

func (m *mockWebAuthnService) BeginRegistration(ctx context.Context, userID string) (*protocol.CredentialCreation, error) {
	return m.beginRegistrationFn(ctx, userID)
}

func (m *mockWebAuthnService) FinishRegistration(ctx context.Context, userID string, response []byte) (models.HardwareCredential, error) {
	return m.finishRegistrationFn(ctx, userID, response)
}

func (m *mockWebAuthnService) BeginLogin(ctx context.Context, email string) (*protocol.CredentialAssertion, error) {
	return m.beginLoginFn(ctx, email)
}

func (m *mockWebAuthnService) FinishLogin(ctx context.Context, email string, response []byte) (models.User, error) {
	return m.finishLoginFn(ctx, email, response)
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

// newTestHandler builds a Handler over the given service mocks. Unused
// services may be left nil.
func newTestHandler(t *testing.T, svcs *service.Services) *Handler {
	t.Helper()
	return NewHandler(svcs, "test", logger.Nop())
}

// envelope mirrors the response envelope with the data kept raw so each
// test can decode it into the shape it expects.
type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Error   *models.APIError `json:"error"`
}

// decodeEnvelope parses the recorded response body into an envelope.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

// jsonBody serialises v to a JSON request body.
func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return strings.NewReader(string(b))
}

// authedRequest builds a request whose context carries the values the
// auth middleware would have stored.
func authedRequest(method, target string, body io.Reader, userID, accessToken string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	ctx := context.WithValue(req.Context(), utils.UserIDCtxKey, userID)
	ctx = context.WithValue(ctx, utils.AccessTokenCtxKey, accessToken)
	return req.WithContext(ctx)
}

// stubToken returns a models.Token with the given signed string and owner.
func stubToken(signed, userID string) models.Token {
	return models.Token{SignedString: signed, UserID: userID}
}

// stubUser is a convenience fixture used across multiple tests.
var stubUser = models.User{
	UserID: "user-1",
	Email:  "john@example.com",
	Name:   "John",
}

// ─────────────────────────────────────────────
// NewHandler
// ─────────────────────────────────────────────

func TestNewHandler(t *testing.T) {
	svcs := &service.Services{}
	h := NewHandler(svcs, "v1.2.3", logger.Nop())

	require.NotNil(t, h)
	assert.Same(t, svcs, h.services)
	assert.Equal(t, "v1.2.3", h.version)
}
