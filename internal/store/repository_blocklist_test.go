package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/applock/applock-server/internal/logger"
	"github.com/applock/applock-server/models"
)

func newTestBlocklistRepo(t *testing.T) (*blocklistRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.Nop()
	repo := &blocklistRepository{
		db:     &DB{DB: db, logger: l},
		logger: l,
	}
	return repo, mock, db
}

func TestRevoke_Success(t *testing.T) {
	repo, mock, db := newTestBlocklistRepo(t)
	defer db.Close()

	revoked := models.RevokedToken{
		JTI:       "jti-1",
		RevokedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}

	mock.ExpectExec("INSERT INTO token_blocklist").
		WithArgs(revoked.JTI, revoked.RevokedAt, revoked.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Revoke(context.Background(), revoked); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRevoke_AlreadyRevokedIsIdempotent(t *testing.T) {
	repo, mock, db := newTestBlocklistRepo(t)
	defer db.Close()

	revoked := models.RevokedToken{JTI: "jti-1", RevokedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}

	// conflict swallowed by ON CONFLICT DO NOTHING: zero rows affected,
	// still no error
	mock.ExpectExec("INSERT INTO token_blocklist").
		WithArgs(revoked.JTI, revoked.RevokedAt, revoked.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Revoke(context.Background(), revoked); err != nil {
		t.Fatalf("expected revoking an already-revoked jti to succeed, got %v", err)
	}
}

func TestIsRevoked(t *testing.T) {
	repo, mock, db := newTestBlocklistRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("jti-listed").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("jti-clean").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	revoked, err := repo.IsRevoked(context.Background(), "jti-listed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !revoked {
		t.Error("expected listed jti to report revoked")
	}

	revoked, err = repo.IsRevoked(context.Background(), "jti-clean")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if revoked {
		t.Error("expected clean jti to report not revoked")
	}
}

func TestIsRevoked_DBError(t *testing.T) {
	repo, mock, db := newTestBlocklistRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("jti-1").
		WillReturnError(errors.New("connection reset"))

	if _, err := repo.IsRevoked(context.Background(), "jti-1"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestDeleteExpired(t *testing.T) {
	repo, mock, db := newTestBlocklistRepo(t)
	defer db.Close()

	now := time.Now().UTC()

	mock.ExpectExec("DELETE FROM token_blocklist").
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := repo.DeleteExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 3 {
		t.Errorf("expected 3 deleted rows, got %d", deleted)
	}
}
