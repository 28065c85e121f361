package workers

import (
	"context"
	"time"

	"github.com/passvault-io/passvault/internal/logger"
	"github.com/passvault-io/passvault/internal/service"
)

// retentionWorker periodically prunes vault revision history for all users
// according to the configured retention policy.
type retentionWorker struct {
	retention service.RetentionService
	interval  time.Duration
	logger    *logger.Logger
}

func newRetentionWorker(retention service.RetentionService, interval time.Duration, logger *logger.Logger) *retentionWorker {
	return &retentionWorker{
		retention: retention,
		interval:  interval,
		logger:    logger,
	}
}

func (w *retentionWorker) Run(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Info().Msg("retention worker is disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := w.retention.PruneAll(ctx)
			if err != nil {
				w.logger.Error().Err(err).Msg("retention pruning failed")
				continue
			}
			if deleted > 0 {
				w.logger.Info().Msgf("retention pruning removed %d revisions", deleted)
			}
		}
	}
}
