// SPDX-License-Identifier: Apache-2.0

// Package adapter provides the transport layer for talking to the vault
// server from a client device.
//
// The primary abstraction is [ServerAdapter], which decouples the sync engine
// from the underlying protocol. The package ships an HTTP/REST implementation
// ([NewHTTPServerAdapter]). Error values defined in errors.go are mapped from
// HTTP status codes by mapHTTPError so that callers can use [errors.Is] for
// transport-agnostic error handling (e.g. [ErrConflict] for 409,
// [ErrUnauthorized] for 401).
package adapter

import (
	"context"

	"github.com/passvault-io/passvault/models"
)

// ServerAdapter defines transport-agnostic communication with the vault
// server. Implementations are responsible for serialisation, authentication
// header management, and mapping transport-level errors to the sentinel
// values defined in this package.
type ServerAdapter interface {
	// SetTokens stores the token pair attached to all subsequent
	// authenticated requests. Called after a successful LoginValidate or
	// Refresh.
	SetTokens(pair models.TokenPair)

	// Tokens returns the pair currently stored in the adapter.
	Tokens() models.TokenPair

	// Signup registers a new account from client-computed SRP material.
	Signup(ctx context.Context, req models.SignupRequest) error

	// LoginInit starts the SRP exchange and returns the salt, the server
	// ephemeral and the key-derivation parameters.
	LoginInit(ctx context.Context, req models.LoginInitRequest) (models.LoginInitResponse, error)

	// LoginValidate completes the SRP exchange. On success it stores the
	// issued tokens via SetTokens. Returns [ErrTwoFactorRequired] when the
	// account needs a one-time code and none (or a wrong one) was supplied.
	LoginValidate(ctx context.Context, req models.LoginValidateRequest) (models.LoginValidateResponse, error)

	// Refresh rotates the refresh token and stores the new pair.
	Refresh(ctx context.Context) (models.TokenPair, error)

	// PushVault uploads a new revision based on req.BasedOnRevision. Returns
	// the committed revision number, or [ErrConflict] when the base is stale.
	PushVault(ctx context.Context, req models.VaultPushRequest) (int64, error)

	// PullVault fetches the current (max-revision) vault row. Returns
	// [ErrNotFound] when the user has no revisions yet.
	PullVault(ctx context.Context) (models.VaultRevision, error)

	// PullVaultsSince fetches every revision strictly newer than
	// fromRevision, oldest first.
	PullVaultsSince(ctx context.Context, fromRevision int64) ([]models.VaultRevision, error)

	// ChangePassword swaps the SRP credentials and uploads the re-encrypted
	// vault in one transactional request. Returns the new revision number.
	ChangePassword(ctx context.Context, req models.ChangePasswordRequest) (int64, error)

	// ServerVersion returns the server build version string.
	ServerVersion(ctx context.Context) (string, error)
}
