package http

import (
	"encoding/json"
	"net/http"

	"github.com/applock/applock-server/internal/logger"
	"github.com/applock/applock-server/internal/service"
	"github.com/applock/applock-server/internal/utils"
	"github.com/applock/applock-server/models"
)

// changePasswordRequest is the body of POST /api/user/password.
type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
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

// updateProfile applies a partial update to the authenticated user's
// profile. Absent fields are left unchanged; unknown fields are
// rejected.
func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no user id in context, auth middleware missing")
		respondError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	var update models.ProfileUpdate
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&update); err != nil {
		log.Debug().Err(err).Msg("invalid JSON was passed")
		respondError(w, r, service.ErrInvalidDataProvided)
		return
	}

	user, err := h.services.UserService.UpdateProfile(ctx, userID, update)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondSuccess(w, r, user.PublicView(), http.StatusOK)
}

// updateSettings merges the provided preference keys into the
// authenticated user's settings. Only the recognized keys are accepted;
// anything else fails validation.
func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no user id in context, auth middleware missing")
		respondError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	var update models.SettingsUpdate
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&update); err != nil {
		log.Debug().Err(err).Msg("unrecognized settings payload")
		respondError(w, r, service.ErrInvalidDataProvided)
		return
	}

	user, err := h.services.UserService.UpdateSettings(ctx, userID, update)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondSuccess(w, r, user.PublicView(), http.StatusOK)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no user id in context, auth middleware missing")
		respondError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debug().Err(err).Msg("invalid JSON was passed")
		respondError(w, r, service.ErrInvalidDataProvided)
		return
	}

	if err := h.services.UserService.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(w, r, err)
		return
	}

	log.Info().Str("user_id", userID).Msg("password changed")
	respondSuccess(w, r, nil, http.StatusOK)
}
