package store

import (
	"context"
	"fmt"

	"github.com/passvault-io/passvault/internal/logger"
	"github.com/passvault-io/passvault/models"
)

// auditRepository appends entries to the per-user audit trail. Audit writes
// are a side effect of authentication and vault operations; callers treat
// failures as non-fatal and never let them influence the primary operation.
type auditRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewAuditRepository constructs an [AuditRepository] backed by the provided
// database connection and logger.
func NewAuditRepository(db *DB, logger *logger.Logger) AuditRepository {
	logger.Debug().Msg("creating audit repository")
	return &auditRepository{
		db:     db,
		logger: logger,
	}
}

// Record appends one audit event.
func (r *auditRepository) Record(ctx context.Context, event models.AuditEvent) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, insertAuditEvent,
		event.UserID, event.Action, event.Detail,
	); err != nil {
		log.Err(err).Str("func", "*auditRepository.Record").
			Str("action", event.Action).Msg("error inserting audit event")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}
