package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrUsernameAlreadyExists is returned when signup fails because a user
	// with the same username already exists in the database.
	ErrUsernameAlreadyExists = errors.New("username already exists")

	// ErrNoUserWasFound is returned when a query expected to match at least
	// one user record produces an empty result set.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrVaultConflict is returned when the optimistic compare-and-swap on
	// the revision number fails: the basedOnRevision supplied by a pushing
	// client is no longer the current maximum, meaning another device has
	// pushed in the meantime. The client must pull, merge and retry.
	ErrVaultConflict = errors.New("vault revision conflict")

	// ErrNoRevisions is returned when a pull targets a user that has never
	// pushed a vault revision.
	ErrNoRevisions = errors.New("no vault revisions exist for user")

	// ErrRefreshTokenNotFound is returned when a refresh token is absent,
	// already consumed, or expired. The three cases are deliberately not
	// distinguished to keep the rotation endpoint oracle-free.
	ErrRefreshTokenNotFound = errors.New("refresh token not found or consumed")

	// ErrLoginSessionNotFound is returned by the login-session store when an
	// attempt ID is unknown, expired, or already consumed by a previous
	// validate call.
	ErrLoginSessionNotFound = errors.New("login session not found or consumed")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain
// logic can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a read-only query against
	// the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrScanningRow is returned when scanning column values from a result
	// row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")
)
