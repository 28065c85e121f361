package service

import (
	"context"
	"fmt"

	"github.com/passvault-io/passvault/internal/clock"
	"github.com/passvault-io/passvault/internal/logger"
	"github.com/passvault-io/passvault/internal/retention"
	"github.com/passvault-io/passvault/internal/store"
	"github.com/passvault-io/passvault/models"
)

// retentionService applies the configured retention policy to vault
// histories. The policy itself is pure; this service feeds it revisions and
// executes its verdicts.
type retentionService struct {
	vaultRepository store.VaultRepository
	auditRepository store.AuditRepository

	policy retention.Policy

	clock clock.Clock

	logger *logger.Logger
}

// NewRetentionService constructs a RetentionService enforcing the given
// policy.
func NewRetentionService(repos *store.Repositories, policy retention.Policy, clk clock.Clock, logger *logger.Logger) RetentionService {
	return &retentionService{
		vaultRepository: repos.VaultRepository,
		auditRepository: repos.AuditRepository,
		policy:          policy,
		clock:           clk,
		logger:          logger,
	}
}

// PruneUser applies the policy to one user's history and returns the number
// of deleted revisions. The current revision is never a candidate; the
// repository guards it a second time in SQL.
func (r *retentionService) PruneUser(ctx context.Context, userID int64) (int64, error) {
	log := logger.FromContext(ctx)

	revs, err := r.vaultRepository.AllRevisions(ctx, userID)
	if err != nil {
		log.Err(err).Int64("userID", userID).Msg("loading revision history failed")
		return 0, fmt.Errorf("loading revision history failed: %w", err)
	}

	victims := r.policy.Apply(revs, r.clock.Now())
	if len(victims) == 0 {
		return 0, nil
	}

	deleted, err := r.vaultRepository.DeleteRevisions(ctx, userID, victims)
	if err != nil {
		log.Err(err).Int64("userID", userID).Msg("deleting expired revisions failed")
		return 0, fmt.Errorf("deleting expired revisions failed: %w", err)
	}

	if deleted > 0 {
		event := models.AuditEvent{
			UserID:    userID,
			Action:    models.AuditRetention,
			Detail:    fmt.Sprintf("%d revisions pruned", deleted),
			CreatedAt: r.clock.Now(),
		}
		if err := r.auditRepository.Record(ctx, event); err != nil {
			log.Err(err).Int64("userID", userID).Msg("audit record failed")
		}
	}

	return deleted, nil
}

// PruneAll sweeps every user that owns at least one revision. A failure for
// one user is logged and does not stop the sweep.
func (r *retentionService) PruneAll(ctx context.Context) (int64, error) {
	log := logger.FromContext(ctx)

	userIDs, err := r.vaultRepository.ListUserIDs(ctx)
	if err != nil {
		log.Err(err).Msg("listing users for retention sweep failed")
		return 0, fmt.Errorf("listing users for retention sweep failed: %w", err)
	}

	var total int64
	for _, userID := range userIDs {
		deleted, err := r.PruneUser(ctx, userID)
		if err != nil {
			log.Err(err).Int64("userID", userID).Msg("retention sweep failed for user")
			continue
		}
		total += deleted
	}

	return total, nil
}
