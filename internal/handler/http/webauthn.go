package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/applock/applock-server/internal/logger"
	"github.com/applock/applock-server/internal/service"
	"github.com/applock/applock-server/internal/utils"
	"github.com/applock/applock-server/models"
)

// maxCeremonyBodyBytes caps ceremony request bodies. Authenticator
// responses are a few kilobytes; anything near the cap is garbage.
const maxCeremonyBodyBytes = 1 << 20

// webauthnLoginBeginRequest is the body of
// POST /api/webauthn/authenticate/begin. The email names the claimed
// user; the finish step verifies against that same user's credentials.
type webauthnLoginBeginRequest struct {
	Email string `json:"email"`
}

// webauthnLoginCompleteRequest is the body of
// POST /api/webauthn/authenticate/complete. Response carries the
// authenticator's assertion exactly as produced by the client, kept as
// raw JSON for the ceremony library to parse.
type webauthnLoginCompleteRequest struct {
	Email    string          `json:"email"`
	Response json.RawMessage `json:"response"`
}

// webauthnRegisterBegin opens a credential-registration ceremony for the
// authenticated user and returns the creation options for the client's
// authenticator.
func (h *Handler) webauthnRegisterBegin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no user id in context, auth middleware missing")
		respondError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	creation, err := h.services.WebAuthnService.BeginRegistration(ctx, userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondSuccess(w, r, creation, http.StatusOK)
}

// webauthnRegisterComplete verifies the authenticator's attestation
// response and persists the new hardware credential. The whole request
// body is the attestation response as produced by the client.
func (h *Handler) webauthnRegisterComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no user id in context, auth middleware missing")
		respondError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCeremonyBodyBytes))
	if err != nil || len(body) == 0 {
		log.Debug().Err(err).Msg("empty, oversized or unreadable attestation body")
		respondError(w, r, service.ErrInvalidDataProvided)
		return
	}

	credential, err := h.services.WebAuthnService.FinishRegistration(ctx, userID, body)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondSuccess(w, r, credential, http.StatusOK)
}

// webauthnLoginBegin opens an authentication ceremony for the user
// claimed by email and returns the assertion options.
func (h *Handler) webauthnLoginBegin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req webauthnLoginBeginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debug().Err(err).Msg("invalid JSON was passed")
		respondError(w, r, service.ErrInvalidDataProvided)
		return
	}

	assertion, err := h.services.WebAuthnService.BeginLogin(ctx, req.Email)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondSuccess(w, r, assertion, http.StatusOK)
}

// webauthnLoginComplete verifies the authenticator's assertion against
// the pending ceremony of the claimed user and, on success, issues a
// fresh token pair exactly as a password login would.
func (h *Handler) webauthnLoginComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req webauthnLoginCompleteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCeremonyBodyBytes)).Decode(&req); err != nil {
		log.Debug().Err(err).Msg("invalid JSON was passed")
		respondError(w, r, service.ErrInvalidDataProvided)
		return
	}
	if req.Email == "" || len(req.Response) == 0 {
		respondError(w, r, service.ErrInvalidDataProvided)
		return
	}

	user, err := h.services.WebAuthnService.FinishLogin(ctx, req.Email, req.Response)
	if err != nil {
		respondError(w, r, err)
		return
	}

	pair, err := h.services.TokenService.IssuePair(ctx, user.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	log.Info().Str("user_id", user.UserID).Msg("user logged in with hardware credential")
	respondSuccess(w, r, models.LoginResponse{
		AccessToken:  pair.Access.SignedString,
		RefreshToken: pair.Refresh.SignedString,
		User:         user.PublicView(),
	}, http.StatusOK)
}
