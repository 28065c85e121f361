package models

import "time"

// User represents an account entity used for zero-knowledge authentication.
// The server stores only the SRP salt and verifier; neither the password nor
// any value derived directly from it ever reaches this struct on the server
// side. Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// UserID is the internal unique identifier of the user.
	// It is not exposed via JSON and is used only at the persistence layer.
	UserID int64 `json:"-"`

	// Username is the unique, lowercased and trimmed login identifier.
	Username string `json:"username"`

	// Salt is the SRP salt, hex-encoded. Public: it is handed to any caller
	// of login init so the client can recompute its private key.
	Salt string `json:"salt"`

	// Verifier is the SRP verifier (g^x mod N), hex-encoded.
	// It allows proof validation but cannot be reversed into the password.
	// Never exposed via JSON.
	Verifier string `json:"-"`

	// EncryptionType identifies the client-side key-derivation algorithm
	// (e.g. "argon2id"). The server stores it opaquely and returns it during
	// login init; it never derives keys itself.
	EncryptionType string `json:"encryption_type"`

	// EncryptionSettings holds the serialized parameters of the client-side
	// KDF (memory, iterations, parallelism). Opaque to the server.
	EncryptionSettings string `json:"encryption_settings"`

	// EncryptionSalt is the salt for the client-side vault-key derivation,
	// distinct from the SRP salt.
	EncryptionSalt string `json:"encryption_salt"`

	// TotpSecret, when non-empty, enables the second authentication factor.
	// Never exposed via JSON.
	TotpSecret string `json:"-"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}
