package models

import "time"

// VaultPushRequest carries a new encrypted vault snapshot from a client.
// BasedOnRevision is the optimistic-concurrency token: the push succeeds
// only when it equals the server's current maximum revision for the user.
type VaultPushRequest struct {
	Blob                []byte   `json:"blob"`
	BasedOnRevision     int64    `json:"based_on_revision"`
	CredentialsCount    int64    `json:"credentials_count"`
	EmailAddresses      []string `json:"email_addresses,omitempty"`
	PublicDomains       []string `json:"public_domains,omitempty"`
	PrivateDomains      []string `json:"private_domains,omitempty"`
	EncryptionPublicKey string   `json:"encryption_public_key,omitempty"`
	ClientLabel         string   `json:"client_label"`
}

// VaultPushResponse acknowledges a committed push.
type VaultPushResponse struct {
	Revision int64 `json:"revision"`
}

// AuditEvent is one entry of the per-user audit trail, written as a side
// effect of authentication and vault operations. Audit writes are
// best-effort and never influence revision numbering.
type AuditEvent struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// Audit trail action labels.
const (
	AuditLogin        = "login"
	AuditLoginFailed  = "login_failed"
	AuditSignup       = "signup"
	AuditVaultPush    = "vault_push"
	AuditVaultPull    = "vault_pull"
	AuditTokenRefresh = "token_refresh"
	AuditPassword     = "password_change"
	AuditRetention    = "retention_prune"
)
