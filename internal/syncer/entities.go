// SPDX-License-Identifier: Apache-2.0

// Package syncer implements the client-side vault model and the merge engine
// that reconciles concurrent edits from multiple devices. The server never
// sees any of these types: a vault travels only as an encrypted blob.
package syncer

import "time"

// SyncMeta is the metadata every syncable entity carries. A record with
// IsDeleted set is a tombstone: excluded from normal reads but kept so the
// deletion propagates to other devices during merge.
type SyncMeta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	IsDeleted bool      `json:"is_deleted"`
}

// Meta returns the sync metadata. Embedding SyncMeta promotes this method,
// which is how every entity satisfies [Syncable].
func (m SyncMeta) Meta() SyncMeta { return m }

// Syncable is the capability contract shared by every entity stored inside
// the vault.
type Syncable interface {
	Meta() SyncMeta
}

// Credential is a stored login: the core entity of the vault.
type Credential struct {
	SyncMeta
	ServiceName string `json:"service_name"`
	ServiceURL  string `json:"service_url"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	Notes       string `json:"notes"`
}

// Alias is a forwarding email address tied to the account.
type Alias struct {
	SyncMeta
	Address     string `json:"address"`
	Destination string `json:"destination"`
	Enabled     bool   `json:"enabled"`
}

// Attachment is an arbitrary file attached to a credential.
type Attachment struct {
	SyncMeta
	CredentialID string `json:"credential_id"`
	FileName     string `json:"file_name"`
	ContentType  string `json:"content_type"`
	Data         []byte `json:"data"`
}

// TotpSecret is a one-time-password seed attached to a credential.
type TotpSecret struct {
	SyncMeta
	CredentialID string `json:"credential_id"`
	Secret       string `json:"secret"`
	Digits       int    `json:"digits"`
}

// EncryptionKey is an asymmetric keypair stored in the vault; the private
// half is itself encrypted under the vault key.
type EncryptionKey struct {
	SyncMeta
	Label               string `json:"label"`
	PublicKey           []byte `json:"public_key"`
	EncryptedPrivateKey []byte `json:"encrypted_private_key"`
}
