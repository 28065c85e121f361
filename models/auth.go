package models

// SignupRequest carries the material a client submits at registration.
// The password itself never appears: the client derives the SRP verifier
// locally and sends only public values.
type SignupRequest struct {
	Username           string `json:"username"`
	Salt               string `json:"salt"`
	Verifier           string `json:"verifier"`
	EncryptionType     string `json:"encryption_type"`
	EncryptionSettings string `json:"encryption_settings"`
	EncryptionSalt     string `json:"encryption_salt"`
}

// LoginInitRequest starts the SRP exchange for a username.
type LoginInitRequest struct {
	Username string `json:"username"`
}

// LoginInitResponse returns everything the client needs to compute its
// session proof: the SRP salt, the server's public ephemeral B and the
// stored key-derivation parameters.
//
// AttemptID identifies the ephemeral server-side session created for this
// exchange and must be echoed back on validate.
type LoginInitResponse struct {
	AttemptID          string `json:"attempt_id"`
	Salt               string `json:"salt"`
	ServerPublic       string `json:"server_public"`
	EncryptionType     string `json:"encryption_type"`
	EncryptionSettings string `json:"encryption_settings"`
	EncryptionSalt     string `json:"encryption_salt"`
}

// LoginValidateRequest carries the client's half of the SRP proof exchange.
type LoginValidateRequest struct {
	AttemptID    string `json:"attempt_id"`
	Username     string `json:"username"`
	ClientPublic string `json:"client_public"`
	ClientProof  string `json:"client_proof"`
	RememberMe   bool   `json:"remember_me"`
	DeviceLabel  string `json:"device_label"`

	// TwoFactorCode is the optional TOTP code. Required (and verified
	// atomically with the SRP proof) when the account has a second factor
	// enrolled.
	TwoFactorCode string `json:"two_factor_code,omitempty"`
}

// LoginValidateResponse completes the exchange. ServerProof lets the client
// authenticate the server in turn (mutual authentication). When the account
// requires a second factor and none (or a wrong one) was supplied,
// RequiresTwoFactor is set and no tokens are issued.
type LoginValidateResponse struct {
	RequiresTwoFactor bool       `json:"requires_two_factor,omitempty"`
	ServerProof       string     `json:"server_proof,omitempty"`
	Tokens            *TokenPair `json:"tokens,omitempty"`
}

// RefreshRequest rotates a refresh token into a fresh token pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	DeviceLabel  string `json:"device_label"`
}

// ChangePasswordRequest atomically replaces the SRP credentials and the
// vault blob re-encrypted under the new key. Proof of the current password
// is carried by AttemptID/ClientPublic/ClientProof (a completed SRP exchange
// for the old verifier).
type ChangePasswordRequest struct {
	AttemptID    string `json:"attempt_id"`
	Username     string `json:"username"`
	ClientPublic string `json:"client_public"`
	ClientProof  string `json:"client_proof"`

	NewSalt               string `json:"new_salt"`
	NewVerifier           string `json:"new_verifier"`
	NewEncryptionType     string `json:"new_encryption_type"`
	NewEncryptionSettings string `json:"new_encryption_settings"`
	NewEncryptionSalt     string `json:"new_encryption_salt"`

	// Vault is the full vault re-encrypted under the key derived from the
	// new password, pushed as a new revision in the same transaction.
	Vault VaultPushRequest `json:"vault"`
}
