package store

const (
	createUser = `INSERT INTO users (username, salt, verifier, encryption_type, encryption_settings, encryption_salt, totp_secret)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING user_id, username, salt, verifier, encryption_type, encryption_settings, encryption_salt, totp_secret, created_at;`

	findUserByUsername = `SELECT user_id, username, salt, verifier, encryption_type, encryption_settings, encryption_salt, totp_secret, created_at
    FROM users
    WHERE username = $1;`

	updateUserCredentials = `UPDATE users
    SET salt = $2, verifier = $3, encryption_type = $4, encryption_settings = $5, encryption_salt = $6
    WHERE user_id = $1;`

	// insertRevision is the compare-and-swap push. The INSERT commits only
	// when based_on ($3) still equals the current maximum revision for the
	// user; concurrent pushes from the same base collapse to a single winner
	// because the (user_id, revision) primary key rejects the duplicates.
	insertRevision = `INSERT INTO vault_revisions
    (user_id, revision, blob, credentials_count, email_addresses, public_domains, private_domains, encryption_public_key, client_label, created_at, updated_at)
    SELECT $1, $3 + 1, $2, $4, $5, $6, $7, $8, $9, NOW(), NOW()
    WHERE (SELECT COALESCE(MAX(revision), 0) FROM vault_revisions WHERE user_id = $1) = $3
    RETURNING revision;`

	selectCurrentRevision = `SELECT id, user_id, revision, blob, credentials_count, email_addresses, public_domains, private_domains, encryption_public_key, client_label, created_at, updated_at
    FROM vault_revisions
    WHERE user_id = $1
    ORDER BY revision DESC
    LIMIT 1;`

	selectMaxRevision = `SELECT COALESCE(MAX(revision), 0)
    FROM vault_revisions
    WHERE user_id = $1;`

	selectUserIDsWithRevisions = `SELECT DISTINCT user_id FROM vault_revisions;`

	createRefreshToken = `INSERT INTO refresh_tokens (id, user_id, device_label, expires_at, created_at)
    VALUES ($1, $2, $3, $4, NOW());`

	// consumeRefreshToken marks a token used; the WHERE clause makes the
	// one-time-use guarantee atomic (zero rows affected means the token was
	// missing, expired per the supplied now, or already consumed).
	consumeRefreshToken = `UPDATE refresh_tokens
    SET consumed_at = $2
    WHERE id = $1 AND consumed_at IS NULL AND expires_at > $2
    RETURNING user_id, device_label;`

	deleteExpiredRefreshTokens = `DELETE FROM refresh_tokens
    WHERE expires_at <= $1 OR consumed_at IS NOT NULL;`

	insertAuditEvent = `INSERT INTO audit_log (user_id, action, detail, created_at)
    VALUES ($1, $2, $3, NOW());`
)
