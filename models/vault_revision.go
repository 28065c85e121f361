package models

import "time"

// VaultRevision is one immutable snapshot of a user's encrypted vault.
// A new push always produces a new row; rows are never mutated. For every
// user the Revision values form a gap-free, strictly increasing sequence
// starting at 1, and the row with the maximum Revision is "current".
type VaultRevision struct {
	// ID is the unique identifier of the row in the database.
	ID int64 `json:"id"`

	// UserID is the owner of this revision.
	UserID int64 `json:"-"`

	// Revision is the per-user monotonically increasing revision number.
	Revision int64 `json:"revision"`

	// Blob is the client-encrypted vault ciphertext, base64-encoded on the
	// wire. The server treats it as fully opaque.
	Blob []byte `json:"blob"`

	// CredentialsCount is the number of credentials inside the blob as
	// reported by the pushing client. Bookkeeping only; the server cannot
	// verify it.
	CredentialsCount int64 `json:"credentials_count"`

	// EmailAddresses lists the mailbox addresses the vault owns, used to
	// route inbound email records to this user.
	EmailAddresses []string `json:"email_addresses"`

	// PublicDomains and PrivateDomains are the email domain lists attached
	// to the vault, split by visibility.
	PublicDomains  []string `json:"public_domains"`
	PrivateDomains []string `json:"private_domains"`

	// EncryptionPublicKey is the public half of the vault's asymmetric
	// keypair, used by external producers to encrypt records for the vault.
	EncryptionPublicKey string `json:"encryption_public_key"`

	// ClientLabel identifies the device/application that pushed this
	// revision (e.g. "desktop-linux", "android").
	ClientLabel string `json:"client_label"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the VaultRevision model.
func (v VaultRevision) TableName() string {
	return "vault_revisions"
}
