package service

import (
	"context"

	"github.com/passvault-io/passvault/models"
)

// AuthService drives the zero-knowledge authentication flows: registration,
// the two-step SRP exchange and password change.
type AuthService interface {
	// Signup registers a new account from client-derived SRP material.
	Signup(ctx context.Context, req models.SignupRequest) (models.User, error)

	// LoginInit starts an SRP exchange and returns the salt, the server's
	// public ephemeral and the stored key-derivation parameters.
	LoginInit(ctx context.Context, req models.LoginInitRequest) (models.LoginInitResponse, error)

	// LoginValidate completes the exchange: it verifies the client proof
	// (and the second-factor code, when one is enrolled) and issues tokens.
	LoginValidate(ctx context.Context, req models.LoginValidateRequest) (models.LoginValidateResponse, error)

	// ChangePassword replaces the SRP credentials and commits the vault
	// re-encrypted under the new key as one transaction. Proof of the
	// current password is a completed SRP exchange. Returns the committed
	// revision number.
	ChangePassword(ctx context.Context, req models.ChangePasswordRequest) (int64, error)
}

// TokenService issues, validates and rotates session credentials.
type TokenService interface {
	// Issue mints an access/refresh pair for the given user.
	Issue(ctx context.Context, userID int64, deviceLabel string, rememberMe bool) (models.TokenPair, error)

	// Validate checks a compact access token and returns the owner's user
	// ID. Expired tokens surface as ErrTokenExpired, everything else as
	// ErrTokenInvalid.
	Validate(ctx context.Context, tokenString string) (int64, error)

	// Refresh rotates a one-time refresh token into a fresh pair. The
	// presented token is consumed even if it is never used again.
	Refresh(ctx context.Context, req models.RefreshRequest) (models.TokenPair, error)
}

// VaultService is the server-side API over the append-only revision store.
type VaultService interface {
	// Push commits a new encrypted snapshot on top of req.BasedOnRevision.
	// A stale base yields store.ErrVaultConflict.
	Push(ctx context.Context, userID int64, req models.VaultPushRequest) (int64, error)

	// Pull returns the current (max-revision) snapshot.
	Pull(ctx context.Context, userID int64) (models.VaultRevision, error)

	// PullSince returns every revision strictly newer than fromRevision,
	// oldest first.
	PullSince(ctx context.Context, userID, fromRevision int64) ([]models.VaultRevision, error)
}

// RetentionService prunes historical revisions according to the configured
// policy. Driven by the maintenance worker.
type RetentionService interface {
	// PruneUser applies the policy to one user's history and returns the
	// number of deleted revisions.
	PruneUser(ctx context.Context, userID int64) (int64, error)

	// PruneAll sweeps every user that owns at least one revision.
	PruneAll(ctx context.Context) (int64, error)
}
