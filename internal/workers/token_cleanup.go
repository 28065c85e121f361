package workers

import (
	"context"
	"time"

	"github.com/passvault-io/passvault/internal/clock"
	"github.com/passvault-io/passvault/internal/logger"
	"github.com/passvault-io/passvault/internal/store"
)

// tokenCleanupWorker periodically deletes expired and consumed refresh
// tokens so the token table does not grow without bound.
type tokenCleanupWorker struct {
	tokens   store.RefreshTokenRepository
	interval time.Duration
	clock    clock.Clock
	logger   *logger.Logger
}

func newTokenCleanupWorker(tokens store.RefreshTokenRepository, interval time.Duration, clk clock.Clock, logger *logger.Logger) *tokenCleanupWorker {
	return &tokenCleanupWorker{
		tokens:   tokens,
		interval: interval,
		clock:    clk,
		logger:   logger,
	}
}

func (w *tokenCleanupWorker) Run(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Info().Msg("token cleanup worker is disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := w.tokens.DeleteExpired(ctx, w.clock.Now())
			if err != nil {
				w.logger.Error().Err(err).Msg("refresh token cleanup failed")
				continue
			}
			if deleted > 0 {
				w.logger.Info().Msgf("refresh token cleanup removed %d tokens", deleted)
			}
		}
	}
}
