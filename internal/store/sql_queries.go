package store

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/applock/applock-server/models"
)

const (
	createUser = `INSERT INTO users (id, email, password_hash, name, avatar, settings)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING id, email, password_hash, name, avatar, is_admin, is_disabled, settings, created_at;`

	findUserByEmail = `SELECT id, email, password_hash, name, avatar, is_admin, is_disabled, settings, created_at
    FROM users
    WHERE email = $1;`

	findUserByID = `SELECT id, email, password_hash, name, avatar, is_admin, is_disabled, settings, created_at
    FROM users
    WHERE id = $1;`

	updateUserPassword = `UPDATE users
    SET password_hash = $1
    WHERE id = $2;`

	// Partial settings update: the jsonb concatenation keeps unset keys
	// intact in a single atomic statement. The argument only ever carries
	// the recognized keys because it is marshalled from SettingsUpdate.
	updateUserSettings = `UPDATE users
    SET settings = settings || $1::jsonb
    WHERE id = $2;`

	revokeToken = `INSERT INTO token_blocklist (jti, revoked_at, expires_at)
    VALUES ($1, $2, $3)
    ON CONFLICT (jti) DO NOTHING;`

	isTokenRevoked = `SELECT EXISTS (SELECT 1 FROM token_blocklist WHERE jti = $1);`

	deleteExpiredTokens = `DELETE FROM token_blocklist
    WHERE expires_at < $1;`

	createCredential = `INSERT INTO webauthn_credentials (id, user_id, credential_id, public_key, sign_count, name, credential_json)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING id, user_id, credential_id, public_key, sign_count, name, credential_json, created_at, last_used_at;`

	listCredentialsByUser = `SELECT id, user_id, credential_id, public_key, sign_count, name, credential_json, created_at, last_used_at
    FROM webauthn_credentials
    WHERE user_id = $1
    ORDER BY created_at;`

	findCredentialByID = `SELECT id, user_id, credential_id, public_key, sign_count, name, credential_json, created_at, last_used_at
    FROM webauthn_credentials
    WHERE credential_id = $1;`

	// Guarded counter update: matches only when the presented counter
	// strictly increased (authenticators that never count stay at zero
	// and are allowed through). Zero rows affected means a possible
	// cloned authenticator.
	updateCredentialSignCount = `UPDATE webauthn_credentials
    SET sign_count = $1, credential_json = $2, last_used_at = $3
    WHERE credential_id = $4 AND (sign_count < $1 OR (sign_count = 0 AND $1 = 0));`
)

// buildProfileUpdateQuery dynamically builds the UPDATE statement for a
// partial profile change. Only the fields present in the update are
// touched.
func buildProfileUpdateQuery(userID string, update models.ProfileUpdate) (string, []any, error) {
	builder := sq.Update("users").PlaceholderFormat(sq.Dollar)

	if update.Name != nil {
		builder = builder.Set("name", *update.Name)
	}
	if update.Email != nil {
		builder = builder.Set("email", *update.Email)
	}
	if update.Avatar != nil {
		builder = builder.Set("avatar", *update.Avatar)
	}

	return builder.Where(sq.Eq{"id": userID}).ToSql()
}
