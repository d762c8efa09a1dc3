package workers

import (
	"context"
	"time"

	"github.com/applock/applock-server/internal/logger"
	"github.com/applock/applock-server/internal/store"
)

// BlocklistJanitor periodically removes revoked-token records whose
// underlying token has passed its natural expiry. An expired token fails
// signature validation on its own, so its blocklist row no longer serves
// a purpose and only grows the table.
type BlocklistJanitor struct {
	blocklist store.TokenBlocklistRepository
	interval  time.Duration
	logger    *logger.Logger
}

// NewBlocklistJanitor builds a janitor that sweeps at the given interval.
func NewBlocklistJanitor(blocklist store.TokenBlocklistRepository, interval time.Duration, logger *logger.Logger) *BlocklistJanitor {
	return &BlocklistJanitor{
		blocklist: blocklist,
		interval:  interval,
		logger:    logger,
	}
}

// Run starts the sweep loop in a goroutine and returns. The loop stops
// when ctx is cancelled.
func (j *BlocklistJanitor) Run(ctx context.Context) {
	j.logger.Info().Dur("interval", j.interval).Msg("blocklist janitor started")

	go func() {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				j.logger.Info().Msg("blocklist janitor stopped")
				return
			case <-ticker.C:
				j.sweep(ctx)
			}
		}
	}()
}

func (j *BlocklistJanitor) sweep(ctx context.Context) {
	deleted, err := j.blocklist.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		j.logger.Err(err).Msg("blocklist sweep failed")
		return
	}

	if deleted > 0 {
		j.logger.Info().Int64("deleted", deleted).Msg("pruned expired blocklist entries")
	}
}
