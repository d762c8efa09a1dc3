package store

import (
	"time"

	"github.com/applock/applock-server/internal/logger"
	"github.com/redis/go-redis/v9"
)

// NewStorages wires the repositories over an already-connected database
// and Redis client into a single aggregate. Connection setup (and the
// schema migration that precedes it) is the caller's responsibility so
// the handles can be shared and closed in one place.
func NewStorages(db *DB, redisClient *redis.Client, ceremonyTTL time.Duration, log *logger.Logger) *Storages {
	return &Storages{
		UserRepository:           NewUserRepository(db, log),
		TokenBlocklistRepository: NewTokenBlocklistRepository(db, log),
		CredentialRepository:     NewCredentialRepository(db, log),
		CeremonyStore:            NewCeremonyStore(redisClient, ceremonyTTL, log),
	}
}
