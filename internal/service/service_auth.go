package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/applock/applock-server/internal/logger"
	"github.com/applock/applock-server/internal/store"
	"github.com/applock/applock-server/internal/utils"
	"github.com/applock/applock-server/models"
)

// authService is the concrete implementation of AuthService.
// It handles user registration and credential verification using a
// UserRepository for persistence and bcrypt for password hashing.
type authService struct {
	// userRepository is the data-access layer used to create and look up users.
	userRepository store.UserRepository

	// idGenerator produces the opaque unique ids assigned at registration.
	idGenerator *utils.UUIDGenerator

	// logger is the structured logger used for diagnostic and error output.
	logger *logger.Logger
}

// NewAuthService constructs a new AuthService wired to the given
// UserRepository.
//
// The returned service is safe for concurrent use; all state is read-only
// after construction.
func NewAuthService(userRepository store.UserRepository, logger *logger.Logger) AuthService {
	return &authService{
		userRepository: userRepository,
		idGenerator:    utils.NewUUIDGenerator(),
		logger:         logger,
	}
}

// RegisterUser creates a new user account.
//
// It validates that email, password, and name are all non-empty, hashes
// the password with bcrypt, and delegates persistence to the
// UserRepository. The plaintext password never leaves this function.
//
// Returns the persisted user (with a server-assigned UserID) or:
//   - ErrInvalidDataProvided if any field is empty.
//   - store.ErrEmailAlreadyExists if the email is taken.
//   - A wrapped storage error if the repository call fails.
func (a *authService) RegisterUser(ctx context.Context, email, password, name string) (models.User, error) {
	log := logger.FromContext(ctx)

	if email == "" || password == "" || name == "" {
		log.Error().Str("email", email).Msg("invalid registration data provided")
		return models.User{}, ErrInvalidDataProvided
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		log.Err(err).Msg("password hashing failed")
		return models.User{}, fmt.Errorf("password hashing failed: %w", err)
	}

	registeredUser, err := a.userRepository.CreateUser(ctx, models.User{
		UserID:       a.idGenerator.Generate(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
	})
	if err != nil {
		log.Err(err).Str("email", email).Msg("user creation ended with error")
		if errors.Is(err, store.ErrEmailAlreadyExists) {
			return models.User{}, err
		}
		return models.User{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	return registeredUser, nil
}

// Login authenticates an existing user by email and password.
//
// An unknown email and a wrong password both yield ErrInvalidCredentials,
// and the unknown-email path still pays for a bcrypt comparison: the
// failure modes are indistinguishable by error or by timing, so account
// existence cannot be probed. A disabled account fails the same way.
//
// Returns the authenticated user record or:
//   - ErrInvalidDataProvided if email or password is empty.
//   - ErrInvalidCredentials on any authentication failure.
//   - A wrapped storage error if the repository lookup fails.
func (a *authService) Login(ctx context.Context, email, password string) (models.User, error) {
	log := logger.FromContext(ctx)

	if email == "" || password == "" {
		log.Error().Msg("invalid login data provided")
		return models.User{}, ErrInvalidDataProvided
	}

	foundUser, err := a.userRepository.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			// Burn a hash comparison so this branch takes as long as a
			// wrong-password rejection. Internal logs may distinguish
			// the cause; the caller never does.
			utils.DummyVerifyPassword(password)
			log.Warn().Str("email", email).Msg("login attempt for unknown email")
			return models.User{}, ErrInvalidCredentials
		}

		log.Err(err).Str("email", email).Msg("user search by email failed")
		return models.User{}, fmt.Errorf("user search by email failed: %w", err)
	}

	if !utils.VerifyPassword(password, foundUser.PasswordHash) {
		log.Warn().Str("id", foundUser.UserID).Msg("login attempt with wrong password")
		return models.User{}, ErrInvalidCredentials
	}

	if foundUser.IsDisabled {
		log.Warn().Str("id", foundUser.UserID).Msg("login attempt for disabled account")
		return models.User{}, ErrInvalidCredentials
	}

	return foundUser, nil
}
