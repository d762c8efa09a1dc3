package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/applock/applock-server/internal/logger"
	"github.com/applock/applock-server/models"
	"github.com/jackc/pgerrcode"
)

// userRepository is the PostgreSQL-backed implementation of [UserRepository].
// It handles user account creation, lookup, and mutation against the
// "users" table.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser persists a new user record and returns the fully populated
// [models.User] with server-assigned fields echoed back by the RETURNING
// clause.
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrEmailAlreadyExists].
//   - Any other driver-level error → wrapped as "unexpected DB error".
//   - Scan failure → returned directly.
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	settingsJSON, err := json.Marshal(user.Settings)
	if err != nil {
		return models.User{}, fmt.Errorf("error marshalling user settings: %w", err)
	}

	row := r.db.QueryRowContext(ctx, createUser, user.UserID, user.Email, user.PasswordHash, user.Name, user.Avatar, settingsJSON)

	saved, err := scanUser(row)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error: creating user failed")

		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.User{}, ErrEmailAlreadyExists
		}
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return saved, nil
}

// FindUserByEmail retrieves the user record whose email matches exactly.
// Returns [ErrNoUserWasFound] when no row matches.
func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findUser(ctx, findUserByEmail, email)
}

// FindUserByID retrieves the user record with the given opaque id.
// Returns [ErrNoUserWasFound] when no row matches.
func (r *userRepository) FindUserByID(ctx context.Context, userID string) (models.User, error) {
	return r.findUser(ctx, findUserByID, userID)
}

func (r *userRepository) findUser(ctx context.Context, query string, arg any) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, query, arg)

	found, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNoUserWasFound
		}

		log.Err(err).Str("func", "*userRepository.findUser").Msg("error: user lookup failed")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return found, nil
}

// UpdateProfile applies a partial profile change (name, email, avatar).
// The UPDATE statement is built dynamically so untouched columns keep
// their values.
//
// Error handling:
//   - empty update → no-op, nil error.
//   - unique_violation on email → [ErrEmailAlreadyExists].
//   - zero affected rows → [ErrNoUserWasFound].
func (r *userRepository) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) error {
	log := logger.FromContext(ctx)

	if update.IsEmpty() {
		return nil
	}

	query, args, err := buildProfileUpdateQuery(userID, update)
	if err != nil {
		return fmt.Errorf("error building profile update query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.UpdateProfile").Msg("error: profile update failed")

		if postgresError(err) == pgerrcode.UniqueViolation {
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return checkUserAffected(result)
}

// UpdateSettings applies a partial settings change. Only the recognized
// keys can occur in the update, and unset keys keep their stored values.
func (r *userRepository) UpdateSettings(ctx context.Context, userID string, update models.SettingsUpdate) error {
	log := logger.FromContext(ctx)

	if update.IsEmpty() {
		return nil
	}

	patch, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("error marshalling settings update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, updateUserSettings, patch, userID)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.UpdateSettings").Msg("error: settings update failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return checkUserAffected(result)
}

// UpdatePassword replaces the stored password hash. The hash is assumed
// to be derived already; plaintext never reaches this layer.
func (r *userRepository) UpdatePassword(ctx context.Context, userID string, passwordHash string) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, updateUserPassword, passwordHash, userID)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.UpdatePassword").Msg("error: password update failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return checkUserAffected(result)
}

// scanUser reads one users row into a models.User, decoding the settings
// JSON column.
func scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	var avatar sql.NullString
	var settingsJSON []byte

	if err := row.Scan(&user.UserID, &user.Email, &user.PasswordHash, &user.Name, &avatar, &user.IsAdmin, &user.IsDisabled, &settingsJSON, &user.CreatedAt); err != nil {
		return models.User{}, err
	}

	user.Avatar = avatar.String

	if len(settingsJSON) > 0 {
		if err := json.Unmarshal(settingsJSON, &user.Settings); err != nil {
			return models.User{}, fmt.Errorf("error unmarshalling user settings: %w", err)
		}
	}

	return user, nil
}

// checkUserAffected converts a zero-rows UPDATE into ErrNoUserWasFound.
func checkUserAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNoUserWasFound
	}

	return nil
}
