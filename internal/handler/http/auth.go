package http

import (
	"encoding/json"
	"net/http"

	"github.com/applock/applock-server/internal/logger"
	"github.com/applock/applock-server/internal/service"
	"github.com/applock/applock-server/internal/utils"
	"github.com/applock/applock-server/models"
)

// registerRequest is the body of POST /api/auth/register.
type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// loginRequest is the body of POST /api/auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debug().Err(err).Msg("invalid JSON was passed")
		respondError(w, r, service.ErrInvalidDataProvided)
		return
	}

	registeredUser, err := h.services.AuthService.RegisterUser(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		respondError(w, r, err)
		return
	}

	log.Info().Str("user_id", registeredUser.UserID).Msg("user registered")
	respondSuccess(w, r, registeredUser.PublicView(), http.StatusCreated)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debug().Err(err).Msg("invalid JSON was passed")
		respondError(w, r, service.ErrInvalidDataProvided)
		return
	}

	foundUser, err := h.services.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	pair, err := h.services.TokenService.IssuePair(ctx, foundUser.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	log.Info().Str("user_id", foundUser.UserID).Msg("user logged in")
	respondSuccess(w, r, models.LoginResponse{
		AccessToken:  pair.Access.SignedString,
		RefreshToken: pair.Refresh.SignedString,
		User:         foundUser.PublicView(),
	}, http.StatusOK)
}

// refresh exchanges a valid refresh token, presented as the bearer
// token, for a new access token. The refresh token itself stays valid.
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		respondError(w, r, ErrEmptyAuthorizationHeader)
		return
	}
	tokenString, err := getTokenFromAuthHeader(authHeader)
	if err != nil {
		respondError(w, r, err)
		return
	}

	accessToken, err := h.services.TokenService.Refresh(ctx, tokenString)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondSuccess(w, r, models.RefreshResponse{AccessToken: accessToken.SignedString}, http.StatusOK)
}

// logout revokes the presented access token. The token's jti joins the
// blocklist, so the same token fails verification from this moment on.
// Revoking an already-revoked token succeeds.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	tokenString, ok := utils.GetAccessTokenFromContext(ctx)
	if !ok {
		log.Error().Msg("no access token in context, auth middleware missing")
		respondError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	if err := h.services.TokenService.Revoke(ctx, tokenString); err != nil {
		respondError(w, r, err)
		return
	}

	if userID, ok := utils.GetUserIDFromContext(ctx); ok {
		log.Info().Str("user_id", userID).Msg("user logged out")
	}
	respondSuccess(w, r, nil, http.StatusOK)
}

// me returns the authenticated user's own record.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no user id in context, auth middleware missing")
		respondError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	user, err := h.services.UserService.GetUser(ctx, userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondSuccess(w, r, user.PublicView(), http.StatusOK)
}
