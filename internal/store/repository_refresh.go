package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/passvault-io/passvault/internal/logger"
	"github.com/passvault-io/passvault/models"
)

// refreshTokenRepository is the PostgreSQL-backed implementation of
// [RefreshTokenRepository]. Tokens are strictly one-time: Rotate consumes
// the presented token and inserts its replacement in a single transaction.
type refreshTokenRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewRefreshTokenRepository constructs a [RefreshTokenRepository] backed by
// the provided database connection and logger.
func NewRefreshTokenRepository(db *DB, logger *logger.Logger) RefreshTokenRepository {
	logger.Debug().Msg("creating refresh token repository")
	return &refreshTokenRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a freshly issued refresh token.
func (r *refreshTokenRepository) Create(ctx context.Context, token models.RefreshToken) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, createRefreshToken,
		token.ID, token.UserID, token.DeviceLabel, token.ExpiresAt,
	); err != nil {
		log.Err(err).Str("func", "*refreshTokenRepository.Create").Msg("error inserting refresh token")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}

// Rotate consumes the token identified by tokenID and inserts replacement
// in one transaction. The consume statement's WHERE clause (unconsumed AND
// unexpired at now) makes the one-time-use check atomic: two concurrent
// rotations of the same token leave exactly one winner.
//
// Returns the owning user ID, or [ErrRefreshTokenNotFound] when the token
// is unknown, expired at now, or already consumed.
func (r *refreshTokenRepository) Rotate(ctx context.Context, tokenID string, now time.Time, replacement models.RefreshToken) (int64, error) {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*refreshTokenRepository.Rotate").Msg("error beginning transaction")
		return 0, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	var userID int64
	var deviceLabel string
	err = tx.QueryRowContext(ctx, consumeRefreshToken, tokenID, now).
		Scan(&userID, &deviceLabel)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, ErrRefreshTokenNotFound
	case err != nil:
		log.Err(err).Str("func", "*refreshTokenRepository.Rotate").Msg("error consuming refresh token")
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	replacement.UserID = userID
	if replacement.DeviceLabel == "" {
		replacement.DeviceLabel = deviceLabel
	}
	if _, err = tx.ExecContext(ctx, createRefreshToken,
		replacement.ID, replacement.UserID, replacement.DeviceLabel, replacement.ExpiresAt,
	); err != nil {
		log.Err(err).Str("func", "*refreshTokenRepository.Rotate").Msg("error inserting replacement token")
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "*refreshTokenRepository.Rotate").Msg("error committing transaction")
		return 0, fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return userID, nil
}

// DeleteExpired removes tokens that expired before now, plus consumed ones.
// Run periodically by the maintenance worker.
func (r *refreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteExpiredRefreshTokens, now)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return deleted, nil
}
