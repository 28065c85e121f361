package workers

import (
	"context"
	"sync"

	"github.com/passvault-io/passvault/internal/clock"
	"github.com/passvault-io/passvault/internal/config"
	"github.com/passvault-io/passvault/internal/logger"
	"github.com/passvault-io/passvault/internal/service"
	"github.com/passvault-io/passvault/internal/store"
)

type Workers struct {
	workers []Worker
	wg      sync.WaitGroup
}

// NewWorkers builds the server-side background workers: periodic retention
// pruning of vault revision history and cleanup of expired refresh tokens.
func NewWorkers(services *service.Services, repos *store.Repositories, cfg config.Workers, clk clock.Clock, logger *logger.Logger) *Workers {
	return &Workers{
		workers: []Worker{
			newRetentionWorker(services.RetentionService, cfg.RetentionInterval, logger),
			newTokenCleanupWorker(repos.RefreshTokenRepository, cfg.TokenCleanupInterval, clk, logger),
		},
	}
}

// Run launches every worker in its own goroutine. It returns immediately;
// call Wait to block until all workers have observed context cancellation.
func (w *Workers) Run(ctx context.Context) {
	for _, worker := range w.workers {
		w.wg.Add(1)
		go func(worker Worker) {
			defer w.wg.Done()
			worker.Run(ctx)
		}(worker)
	}
}

func (w *Workers) Wait() {
	w.wg.Wait()
}
