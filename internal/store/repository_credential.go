package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/applock/applock-server/internal/logger"
	"github.com/applock/applock-server/models"
	"github.com/jackc/pgerrcode"
)

// credentialRepository is the PostgreSQL-backed implementation of
// [CredentialRepository] over the "webauthn_credentials" table.
type credentialRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewCredentialRepository constructs a [CredentialRepository] backed by
// the provided database connection and logger.
func NewCredentialRepository(db *DB, logger *logger.Logger) CredentialRepository {
	logger.Debug().Msg("creating credential repository")
	return &credentialRepository{
		db:     db,
		logger: logger,
	}
}

// CreateCredential persists a newly registered hardware credential and
// returns the stored record.
//
// Error handling:
//   - unique_violation on credential_id → [ErrCredentialAlreadyExists].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *credentialRepository) CreateCredential(ctx context.Context, credential models.HardwareCredential) (models.HardwareCredential, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createCredential,
		credential.ID, credential.UserID, credential.CredentialID,
		credential.PublicKey, credential.SignCount, credential.Name, credential.CredentialJSON)

	saved, err := scanCredential(row.Scan)
	if err != nil {
		log.Err(err).Str("func", "*credentialRepository.CreateCredential").Msg("error: creating credential failed")

		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.HardwareCredential{}, ErrCredentialAlreadyExists
		}
		return models.HardwareCredential{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return saved, nil
}

// ListByUser returns every credential owned by the user, oldest first.
// An empty result is not an error; callers that require at least one
// credential should check the length themselves.
func (r *credentialRepository) ListByUser(ctx context.Context, userID string) ([]models.HardwareCredential, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, listCredentialsByUser, userID)
	if err != nil {
		log.Err(err).Str("func", "*credentialRepository.ListByUser").Msg("error: listing credentials failed")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	var credentials []models.HardwareCredential
	for rows.Next() {
		credential, err := scanCredential(rows.Scan)
		if err != nil {
			log.Err(err).Str("func", "*credentialRepository.ListByUser").Msg("error: scanning credential row failed")
			return nil, err
		}
		credentials = append(credentials, credential)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}

	return credentials, nil
}

// FindByCredentialID retrieves the credential with the given
// protocol-assigned identifier. Returns [ErrCredentialNotFound] when no
// row matches.
func (r *credentialRepository) FindByCredentialID(ctx context.Context, credentialID []byte) (models.HardwareCredential, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, findCredentialByID, credentialID)

	found, err := scanCredential(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.HardwareCredential{}, ErrCredentialNotFound
		}

		log.Err(err).Str("func", "*credentialRepository.FindByCredentialID").Msg("error: credential lookup failed")
		return models.HardwareCredential{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return found, nil
}

// UpdateSignCount persists the post-authentication counter and
// credential blob. The WHERE clause enforces the monotonic-counter
// invariant inside the database itself, so two concurrent
// authentications can never both pass the check against a stale read:
// the losing statement matches zero rows and surfaces
// [ErrSignCountRegressed].
func (r *credentialRepository) UpdateSignCount(ctx context.Context, credentialID []byte, signCount uint32, credentialJSON []byte, usedAt time.Time) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, updateCredentialSignCount, signCount, credentialJSON, usedAt, credentialID)
	if err != nil {
		log.Err(err).Str("func", "*credentialRepository.UpdateSignCount").Msg("error: sign count update failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if affected == 0 {
		return ErrSignCountRegressed
	}

	return nil
}

// scanCredential reads one webauthn_credentials row using the provided
// scan function, so it works for both sql.Row and sql.Rows.
func scanCredential(scan func(dest ...any) error) (models.HardwareCredential, error) {
	var credential models.HardwareCredential
	var name sql.NullString
	var lastUsedAt sql.NullTime

	if err := scan(&credential.ID, &credential.UserID, &credential.CredentialID,
		&credential.PublicKey, &credential.SignCount, &name,
		&credential.CredentialJSON, &credential.CreatedAt, &lastUsedAt); err != nil {
		return models.HardwareCredential{}, err
	}

	credential.Name = name.String
	if lastUsedAt.Valid {
		credential.LastUsedAt = &lastUsedAt.Time
	}

	return credential, nil
}
