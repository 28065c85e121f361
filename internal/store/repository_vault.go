package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"

	"github.com/passvault-io/passvault/internal/logger"
	"github.com/passvault-io/passvault/models"
)

// psql is the squirrel statement builder configured for PostgreSQL
// ($1-style) placeholders. Used for the dynamically-shaped revision queries.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// vaultRepository is the PostgreSQL-backed implementation of
// [VaultRepository]. Revisions are immutable append-only rows; the
// repository never issues an UPDATE against vault_revisions.
type vaultRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewVaultRepository constructs a [VaultRepository] backed by the provided
// database connection and logger.
func NewVaultRepository(db *DB, logger *logger.Logger) VaultRepository {
	logger.Debug().Msg("creating vault repository")
	return &vaultRepository{
		db:     db,
		logger: logger,
	}
}

// PushRevision commits rev as a new revision with number
// rev.Revision = basedOn + 1 (basedOn is carried in rev.Revision on input).
//
// The insert is a single-statement compare-and-swap: it commits only when
// basedOn still equals the current maximum revision for the user. A stale
// base, or a concurrent winner racing this transaction, surfaces as
// [ErrVaultConflict] and leaves the store untouched.
func (r *vaultRepository) PushRevision(ctx context.Context, rev models.VaultRevision) (int64, error) {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*vaultRepository.PushRevision").Msg("error beginning transaction")
		return 0, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	newRevision, err := insertRevisionTx(ctx, tx, rev)
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "*vaultRepository.PushRevision").Msg("error committing transaction")
		return 0, fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return newRevision, nil
}

// CurrentRevision returns the row with the maximum revision number for the
// user, or [ErrNoRevisions] when the user has never pushed.
func (r *vaultRepository) CurrentRevision(ctx context.Context, userID int64) (models.VaultRevision, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, selectCurrentRevision, userID)

	rev, err := scanRevision(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.VaultRevision{}, ErrNoRevisions
		}
		log.Err(err).Str("func", "*vaultRepository.CurrentRevision").Msg("error scanning current revision")
		return models.VaultRevision{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return rev, nil
}

// CurrentRevisionNumber returns the maximum revision number for the user
// (zero when the user has never pushed).
func (r *vaultRepository) CurrentRevisionNumber(ctx context.Context, userID int64) (int64, error) {
	var current int64
	if err := r.db.QueryRowContext(ctx, selectMaxRevision, userID).Scan(&current); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return current, nil
}

// RevisionsSince returns all revisions with numbers strictly greater than
// fromRevision, oldest first. Used by clients that must merge several
// intervening revisions, and by history views.
func (r *vaultRepository) RevisionsSince(ctx context.Context, userID, fromRevision int64) ([]models.VaultRevision, error) {
	query, args, err := psql.
		Select("id", "user_id", "revision", "blob", "credentials_count",
			"email_addresses", "public_domains", "private_domains",
			"encryption_public_key", "client_label", "created_at", "updated_at").
		From("vault_revisions").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Gt{"revision": fromRevision}).
		OrderBy("revision ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.queryRevisions(ctx, query, args...)
}

// AllRevisions returns every revision the user has, oldest first. The
// retention engine consumes this to compute its keep-set.
func (r *vaultRepository) AllRevisions(ctx context.Context, userID int64) ([]models.VaultRevision, error) {
	return r.RevisionsSince(ctx, userID, 0)
}

// DeleteRevisions removes the given revision numbers for the user. The
// current (maximum) revision is excluded inside the statement itself, so
// even a miscomputed candidate list can never delete the row a concurrent
// pull may be reading as "current".
func (r *vaultRepository) DeleteRevisions(ctx context.Context, userID int64, revisions []int64) (int64, error) {
	log := logger.FromContext(ctx)

	if len(revisions) == 0 {
		return 0, nil
	}

	query, args, err := psql.
		Delete("vault_revisions").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{"revision": revisions}).
		Where(sq.Expr("revision < (SELECT MAX(revision) FROM vault_revisions WHERE user_id = ?)", userID)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*vaultRepository.DeleteRevisions").Msg("error deleting revisions")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return deleted, nil
}

// ListUserIDs returns the IDs of every user owning at least one revision.
// The retention worker iterates over this set.
func (r *vaultRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, selectUserIDsWithRevisions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return ids, nil
}

func (r *vaultRepository) queryRevisions(ctx context.Context, query string, args ...any) ([]models.VaultRevision, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*vaultRepository.queryRevisions").Msg("error executing revisions query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var revs []models.VaultRevision
	for rows.Next() {
		rev, err := scanRevision(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		revs = append(revs, rev)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return revs, nil
}

// insertRevisionTx runs the compare-and-swap revision insert inside an open
// transaction. Shared between the regular push path and the password-change
// credential swap.
//
// rev.Revision carries the basedOn value on input.
func insertRevisionTx(ctx context.Context, tx *sql.Tx, rev models.VaultRevision) (int64, error) {
	emails, domains, private, err := marshalLists(rev)
	if err != nil {
		return 0, err
	}

	var newRevision int64
	err = tx.QueryRowContext(ctx, insertRevision,
		rev.UserID, rev.Blob, rev.Revision,
		rev.CredentialsCount, emails, domains, private,
		rev.EncryptionPublicKey, rev.ClientLabel,
	).Scan(&newRevision)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		// The guarded SELECT produced nothing: basedOn is stale.
		return 0, ErrVaultConflict
	case err != nil && postgresError(err) == pgerrcode.UniqueViolation:
		// Two transactions passed the guard concurrently; the PK kept the
		// sequence gap-free and this one lost.
		return 0, ErrVaultConflict
	case err != nil:
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	return newRevision, nil
}

// marshalLists encodes the three metadata string lists as JSONB column
// values. JSONB keeps the schema portable across drivers that lack native
// text[] scanning support.
func marshalLists(rev models.VaultRevision) (emails, public, private []byte, err error) {
	if emails, err = json.Marshal(orEmpty(rev.EmailAddresses)); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal email addresses: %w", err)
	}
	if public, err = json.Marshal(orEmpty(rev.PublicDomains)); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal public domains: %w", err)
	}
	if private, err = json.Marshal(orEmpty(rev.PrivateDomains)); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal private domains: %w", err)
	}
	return emails, public, private, nil
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

// scanRevision scans one vault_revisions row via the provided scan function,
// decoding the JSONB list columns.
func scanRevision(scan func(dest ...any) error) (models.VaultRevision, error) {
	var rev models.VaultRevision
	var emails, public, private []byte

	if err := scan(
		&rev.ID, &rev.UserID, &rev.Revision, &rev.Blob, &rev.CredentialsCount,
		&emails, &public, &private,
		&rev.EncryptionPublicKey, &rev.ClientLabel, &rev.CreatedAt, &rev.UpdatedAt,
	); err != nil {
		return models.VaultRevision{}, err
	}

	if err := json.Unmarshal(emails, &rev.EmailAddresses); err != nil {
		return models.VaultRevision{}, fmt.Errorf("unmarshal email addresses: %w", err)
	}
	if err := json.Unmarshal(public, &rev.PublicDomains); err != nil {
		return models.VaultRevision{}, fmt.Errorf("unmarshal public domains: %w", err)
	}
	if err := json.Unmarshal(private, &rev.PrivateDomains); err != nil {
		return models.VaultRevision{}, fmt.Errorf("unmarshal private domains: %w", err)
	}

	return rev, nil
}
