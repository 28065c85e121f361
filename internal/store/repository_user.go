package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"

	"github.com/passvault-io/passvault/internal/logger"
	"github.com/passvault-io/passvault/models"
)

// userRepository is the PostgreSQL-backed implementation of [UserRepository].
// It handles account creation, lookup and the transactional credential swap
// against the "users" table.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser persists a new user record and returns the fully populated
// [models.User] with server-assigned fields (UserID, CreatedAt).
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrUsernameAlreadyExists].
//   - Any other driver-level error → wrapped as "unexpected DB error".
//   - Scan failure → returned directly.
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createUser,
		user.Username, user.Salt, user.Verifier,
		user.EncryptionType, user.EncryptionSettings, user.EncryptionSalt,
		user.TotpSecret,
	)

	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error inserting user")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.User{}, ErrUsernameAlreadyExists
		default:
			return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	if err := scanUser(row, &user); err != nil {
		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.User{}, ErrUsernameAlreadyExists
		}
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error: scanning error")
		return models.User{}, err
	}

	return user, nil
}

// FindUserByUsername retrieves the user record whose username matches the
// (already normalized) value provided.
//
// Error handling:
//   - No matching row → [ErrNoUserWasFound].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *userRepository) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	log := logger.FromContext(ctx)

	var foundUser models.User
	row := r.db.QueryRowContext(ctx, findUserByUsername, username)

	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*userRepository.FindUserByUsername").Msg("error querying user")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	if err := scanUser(row, &foundUser); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNoUserWasFound
		}
		log.Err(err).Str("func", "*userRepository.FindUserByUsername").Msg("error: scanning error")
		return models.User{}, err
	}

	return foundUser, nil
}

// ReplaceCredentials atomically swaps the user's SRP salt/verifier and
// key-derivation parameters AND commits the vault blob re-encrypted under
// the new key as a fresh revision. Both succeed or neither does: a password
// change must never leave the stored vault encrypted under the old key while
// the verifier already expects the new one.
//
// The revision insert uses the same compare-and-swap as a regular push, so a
// concurrent device pushing during the password change surfaces as
// [ErrVaultConflict] and rolls the whole change back.
func (r *userRepository) ReplaceCredentials(ctx context.Context, user models.User, rev models.VaultRevision) (int64, error) {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.ReplaceCredentials").Msg("error beginning transaction")
		return 0, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, updateUserCredentials,
		user.UserID, user.Salt, user.Verifier,
		user.EncryptionType, user.EncryptionSettings, user.EncryptionSalt,
	); err != nil {
		log.Err(err).Str("func", "*userRepository.ReplaceCredentials").Msg("error updating credentials")
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	newRevision, err := insertRevisionTx(ctx, tx, rev)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.ReplaceCredentials").Msg("error inserting re-encrypted revision")
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "*userRepository.ReplaceCredentials").Msg("error committing transaction")
		return 0, fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return newRevision, nil
}

// scanUser scans a full users row into dst.
func scanUser(row *sql.Row, dst *models.User) error {
	return row.Scan(
		&dst.UserID, &dst.Username, &dst.Salt, &dst.Verifier,
		&dst.EncryptionType, &dst.EncryptionSettings, &dst.EncryptionSalt,
		&dst.TotpSecret, &dst.CreatedAt,
	)
}
