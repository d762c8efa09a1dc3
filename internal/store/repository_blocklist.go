package store

import (
	"context"
	"fmt"
	"time"

	"github.com/applock/applock-server/internal/logger"
	"github.com/applock/applock-server/models"
)

// blocklistRepository is the PostgreSQL-backed implementation of
// [TokenBlocklistRepository] over the "token_blocklist" table.
type blocklistRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewTokenBlocklistRepository constructs a [TokenBlocklistRepository]
// backed by the provided database connection and logger.
func NewTokenBlocklistRepository(db *DB, logger *logger.Logger) TokenBlocklistRepository {
	logger.Debug().Msg("creating token blocklist repository")
	return &blocklistRepository{
		db:     db,
		logger: logger,
	}
}

// Revoke inserts the revoked-token record. The insert carries
// ON CONFLICT DO NOTHING, so revoking an already-revoked jti succeeds
// without error.
func (r *blocklistRepository) Revoke(ctx context.Context, revoked models.RevokedToken) error {
	log := logger.FromContext(ctx)

	_, err := r.db.ExecContext(ctx, revokeToken, revoked.JTI, revoked.RevokedAt, revoked.ExpiresAt)
	if err != nil {
		log.Err(err).Str("func", "*blocklistRepository.Revoke").Msg("error: revoking token failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}

// IsRevoked reports whether a revoked-token record exists for the jti.
// This lookup runs on every protected call, so it is a single indexed
// EXISTS query.
func (r *blocklistRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	log := logger.FromContext(ctx)

	var revoked bool
	row := r.db.QueryRowContext(ctx, isTokenRevoked, jti)
	if err := row.Scan(&revoked); err != nil {
		log.Err(err).Str("func", "*blocklistRepository.IsRevoked").Msg("error: blocklist lookup failed")
		return false, fmt.Errorf("unexpected DB error: %w", err)
	}

	return revoked, nil
}

// DeleteExpired removes records whose expires_at instant has passed: the
// underlying token can no longer verify by expiry, so the record serves
// no purpose. Returns the number of rows removed.
func (r *blocklistRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, deleteExpiredTokens, now)
	if err != nil {
		log.Err(err).Str("func", "*blocklistRepository.DeleteExpired").Msg("error: blocklist sweep failed")
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading affected rows: %w", err)
	}

	return affected, nil
}
