package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/passvault-io/passvault/internal/clock"
	"github.com/passvault-io/passvault/internal/logger"
	"github.com/passvault-io/passvault/internal/store"
	"github.com/passvault-io/passvault/models"
)

// vaultService is the concrete implementation of VaultService over the
// append-only revision store. The blob is opaque ciphertext end to end; the
// service only moves it, numbers it and records the traffic in the audit
// trail.
type vaultService struct {
	vaultRepository store.VaultRepository
	auditRepository store.AuditRepository

	clock clock.Clock

	logger *logger.Logger
}

// NewVaultService constructs a VaultService wired to the given repositories.
func NewVaultService(repos *store.Repositories, clk clock.Clock, logger *logger.Logger) VaultService {
	return &vaultService{
		vaultRepository: repos.VaultRepository,
		auditRepository: repos.AuditRepository,
		clock:           clk,
		logger:          logger,
	}
}

// Push commits a new encrypted snapshot on top of req.BasedOnRevision and
// returns the committed revision number (always basedOn+1).
//
// The compare-and-swap against the current maximum happens inside the
// repository transaction; a stale base surfaces unchanged as
// store.ErrVaultConflict so handlers can map it to 409 and clients know to
// pull, merge and retry.
func (v *vaultService) Push(ctx context.Context, userID int64, req models.VaultPushRequest) (int64, error) {
	log := logger.FromContext(ctx)

	if len(req.Blob) == 0 {
		log.Error().Int64("userID", userID).Msg("empty vault blob on push")
		return 0, ErrInvalidDataProvided
	}
	if req.BasedOnRevision < 0 {
		log.Error().Int64("userID", userID).Int64("basedOn", req.BasedOnRevision).Msg("negative base revision on push")
		return 0, ErrInvalidDataProvided
	}

	rev := revisionFromPush(userID, req)

	revision, err := v.vaultRepository.PushRevision(ctx, rev)
	if err != nil {
		if errors.Is(err, store.ErrVaultConflict) {
			log.Warn().
				Int64("userID", userID).
				Int64("basedOn", req.BasedOnRevision).
				Str("client", req.ClientLabel).
				Msg("push rejected: stale base revision")
			return 0, err
		}
		log.Err(err).Int64("userID", userID).Msg("vault push failed")
		return 0, fmt.Errorf("vault push failed: %w", err)
	}

	v.recordAudit(ctx, userID, models.AuditVaultPush,
		fmt.Sprintf("revision %d from %s", revision, req.ClientLabel))

	return revision, nil
}

// Pull returns the current (max-revision) snapshot for the user.
// A user that has never pushed yields store.ErrNoRevisions.
func (v *vaultService) Pull(ctx context.Context, userID int64) (models.VaultRevision, error) {
	log := logger.FromContext(ctx)

	rev, err := v.vaultRepository.CurrentRevision(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNoRevisions) {
			return models.VaultRevision{}, err
		}
		log.Err(err).Int64("userID", userID).Msg("vault pull failed")
		return models.VaultRevision{}, fmt.Errorf("vault pull failed: %w", err)
	}

	v.recordAudit(ctx, userID, models.AuditVaultPull,
		fmt.Sprintf("revision %d", rev.Revision))

	return rev, nil
}

// PullSince returns every revision strictly newer than fromRevision, oldest
// first. An empty slice means the caller is already current.
func (v *vaultService) PullSince(ctx context.Context, userID, fromRevision int64) ([]models.VaultRevision, error) {
	log := logger.FromContext(ctx)

	if fromRevision < 0 {
		return nil, ErrInvalidDataProvided
	}

	revs, err := v.vaultRepository.RevisionsSince(ctx, userID, fromRevision)
	if err != nil {
		log.Err(err).Int64("userID", userID).Int64("from", fromRevision).Msg("vault history pull failed")
		return nil, fmt.Errorf("vault history pull failed: %w", err)
	}

	return revs, nil
}

func (v *vaultService) recordAudit(ctx context.Context, userID int64, action, detail string) {
	event := models.AuditEvent{
		UserID:    userID,
		Action:    action,
		Detail:    detail,
		CreatedAt: v.clock.Now(),
	}
	if err := v.auditRepository.Record(ctx, event); err != nil {
		logger.FromContext(ctx).Err(err).Str("action", action).Msg("audit record failed")
	}
}

// revisionFromPush maps an incoming push onto the persistence model.
// Revision carries the basedOn value; the repository assigns basedOn+1.
func revisionFromPush(userID int64, req models.VaultPushRequest) models.VaultRevision {
	return models.VaultRevision{
		UserID:              userID,
		Revision:            req.BasedOnRevision,
		Blob:                req.Blob,
		CredentialsCount:    req.CredentialsCount,
		EmailAddresses:      req.EmailAddresses,
		PublicDomains:       req.PublicDomains,
		PrivateDomains:      req.PrivateDomains,
		EncryptionPublicKey: req.EncryptionPublicKey,
		ClientLabel:         req.ClientLabel,
	}
}
