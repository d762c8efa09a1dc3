package service

import (
	"context"
	"fmt"

	"github.com/applock/applock-server/internal/logger"
	"github.com/applock/applock-server/internal/store"
	"github.com/applock/applock-server/internal/utils"
	"github.com/applock/applock-server/models"
)

// userService is the concrete implementation of UserService, covering
// profile reads, partial profile and settings updates, and password
// changes for authenticated users.
type userService struct {
	users  store.UserRepository
	logger *logger.Logger
}

// NewUserService constructs a UserService backed by the given user repository.
func NewUserService(users store.UserRepository, logger *logger.Logger) UserService {
	return &userService{users: users, logger: logger}
}

// GetUser returns the user identified by userID.
// Returns store.ErrNoUserWasFound if no such user exists.
func (u *userService) GetUser(ctx context.Context, userID string) (models.User, error) {
	return u.users.FindUserByID(ctx, userID)
}

// UpdateProfile applies a partial profile update and returns the
// resulting user. Fields left nil in the update are preserved.
//
// An update with no fields set is rejected with ErrInvalidDataProvided.
// Changing the email to one already taken surfaces
// store.ErrEmailAlreadyExists.
func (u *userService) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (models.User, error) {
	if update.IsEmpty() {
		return models.User{}, fmt.Errorf("%w: no profile fields to update", ErrInvalidDataProvided)
	}
	if update.Email != nil && *update.Email == "" {
		return models.User{}, fmt.Errorf("%w: email cannot be empty", ErrInvalidDataProvided)
	}
	if update.Name != nil && *update.Name == "" {
		return models.User{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidDataProvided)
	}

	if err := u.users.UpdateProfile(ctx, userID, update); err != nil {
		return models.User{}, err
	}

	return u.users.FindUserByID(ctx, userID)
}

// UpdateSettings merges the provided settings keys into the user's
// stored settings and returns the resulting user. Keys absent from the
// update keep their stored values.
func (u *userService) UpdateSettings(ctx context.Context, userID string, update models.SettingsUpdate) (models.User, error) {
	if update.IsEmpty() {
		return models.User{}, fmt.Errorf("%w: no settings keys to update", ErrInvalidDataProvided)
	}

	if err := u.users.UpdateSettings(ctx, userID, update); err != nil {
		return models.User{}, err
	}

	return u.users.FindUserByID(ctx, userID)
}

// ChangePassword replaces the user's password after checking the current
// one against the stored hash.
//
// A wrong current password yields ErrInvalidCredentials. The specific
// failure is logged internally but never exposed to the caller.
func (u *userService) ChangePassword(ctx context.Context, userID string, currentPassword string, newPassword string) error {
	log := logger.FromContext(ctx)

	if currentPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: current and new passwords are required", ErrInvalidDataProvided)
	}

	user, err := u.users.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if !utils.VerifyPassword(currentPassword, user.PasswordHash) {
		log.Debug().Str("user_id", userID).Msg("password change rejected: current password mismatch")
		return ErrInvalidCredentials
	}

	newHash, err := utils.HashPassword(newPassword)
	if err != nil {
		log.Err(err).Msg("hashing new password failed")
		return fmt.Errorf("hashing new password: %w", err)
	}

	return u.users.UpdatePassword(ctx, userID, newHash)
}
