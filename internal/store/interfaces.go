package store

import (
	"context"
	"time"

	"github.com/passvault-io/passvault/models"
)

// UserRepository is the persistence contract for user accounts and their
// SRP credential material.
type UserRepository interface {
	// CreateUser persists a new account and returns it with server-assigned
	// fields populated.
	CreateUser(ctx context.Context, user models.User) (models.User, error)

	// FindUserByUsername looks an account up by its normalized username.
	FindUserByUsername(ctx context.Context, username string) (models.User, error)

	// ReplaceCredentials swaps salt/verifier/KDF parameters and commits the
	// re-encrypted vault as a new revision, all in one transaction.
	ReplaceCredentials(ctx context.Context, user models.User, rev models.VaultRevision) (int64, error)
}

// VaultRepository is the persistence contract for the append-only revision
// store.
type VaultRepository interface {
	// PushRevision commits a new revision; rev.Revision carries the basedOn
	// value and the committed number is basedOn+1.
	PushRevision(ctx context.Context, rev models.VaultRevision) (int64, error)

	// CurrentRevision returns the max-revision row for the user.
	CurrentRevision(ctx context.Context, userID int64) (models.VaultRevision, error)

	// CurrentRevisionNumber returns the max revision number (0 if none).
	CurrentRevisionNumber(ctx context.Context, userID int64) (int64, error)

	// RevisionsSince returns revisions strictly newer than fromRevision,
	// oldest first.
	RevisionsSince(ctx context.Context, userID, fromRevision int64) ([]models.VaultRevision, error)

	// AllRevisions returns every revision for the user, oldest first.
	AllRevisions(ctx context.Context, userID int64) ([]models.VaultRevision, error)

	// DeleteRevisions removes the given revision numbers, always sparing the
	// current maximum.
	DeleteRevisions(ctx context.Context, userID int64, revisions []int64) (int64, error)

	// ListUserIDs returns every user owning at least one revision.
	ListUserIDs(ctx context.Context) ([]int64, error)
}

// RefreshTokenRepository is the persistence contract for one-time refresh
// tokens.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token models.RefreshToken) error

	// Rotate atomically consumes tokenID and inserts replacement, returning
	// the owning user ID.
	Rotate(ctx context.Context, tokenID string, now time.Time, replacement models.RefreshToken) (int64, error)

	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// AuditRepository appends events to the per-user audit trail.
type AuditRepository interface {
	Record(ctx context.Context, event models.AuditEvent) error
}
