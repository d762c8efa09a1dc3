package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/applock/applock-server/internal/config"
	"github.com/applock/applock-server/internal/logger"
	"github.com/redis/go-redis/v9"
)

// ceremonyStore is the Redis-backed implementation of [CeremonyStore].
//
// Pending ceremony state lives under "ceremony:{kind}:{userID}" with the
// configured TTL, so expiry needs no sweeping of our own. SaveCeremony
// overwrites any pending state for the same key (a second begin
// invalidates the first), and ConsumeCeremony uses GETDEL so a state can
// be completed exactly once: a replayed complete finds nothing.
type ceremonyStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewRedisClient connects to Redis with the given settings and verifies
// connectivity with a ping.
func NewRedisClient(ctx context.Context, cfg config.Redis, log *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		log.Err(err).Str("func", "NewRedisClient").Msg("error connecting redis (ping)")
		return nil, fmt.Errorf("error connecting redis: %w", err)
	}
	log.Info().Str("func", "NewRedisClient").Msg("connected to redis successfully")

	return client, nil
}

// NewCeremonyStore constructs a [CeremonyStore] over the given Redis
// client. ttl bounds how long a begun ceremony stays completable.
func NewCeremonyStore(client *redis.Client, ttl time.Duration, logger *logger.Logger) CeremonyStore {
	logger.Debug().Msg("creating ceremony store")
	return &ceremonyStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func ceremonyKey(kind CeremonyKind, userID string) string {
	return fmt.Sprintf("ceremony:%s:%s", kind, userID)
}

// SaveCeremony stores the serialized ceremony state with the configured
// TTL, replacing any pending state for the same (kind, user).
func (s *ceremonyStore) SaveCeremony(ctx context.Context, kind CeremonyKind, userID string, state []byte) error {
	log := logger.FromContext(ctx)

	if err := s.client.Set(ctx, ceremonyKey(kind, userID), state, s.ttl).Err(); err != nil {
		log.Err(err).Str("func", "*ceremonyStore.SaveCeremony").Msg("error: saving ceremony state failed")
		return fmt.Errorf("unexpected redis error: %w", err)
	}

	return nil
}

// ConsumeCeremony atomically fetches and deletes the pending state via
// GETDEL. Returns [ErrCeremonyNotFound] when there is nothing to
// consume.
func (s *ceremonyStore) ConsumeCeremony(ctx context.Context, kind CeremonyKind, userID string) ([]byte, error) {
	log := logger.FromContext(ctx)

	state, err := s.client.GetDel(ctx, ceremonyKey(kind, userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCeremonyNotFound
		}

		log.Err(err).Str("func", "*ceremonyStore.ConsumeCeremony").Msg("error: consuming ceremony state failed")
		return nil, fmt.Errorf("unexpected redis error: %w", err)
	}

	return state, nil
}
