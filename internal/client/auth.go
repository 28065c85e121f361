// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/passvault-io/passvault/internal/adapter"
	"github.com/passvault-io/passvault/internal/crypto"
	"github.com/passvault-io/passvault/internal/srp"
	"github.com/passvault-io/passvault/internal/syncer"
	"github.com/passvault-io/passvault/models"
)

// deriveSecrets turns the master password into the vault encryption key and
// the password hash fed into the SRP private key. The hash is
// domain-separated from the key so the two values never coincide, even
// though both descend from the same Argon2id output.
func deriveSecrets(password string, encryptionSalt []byte, params crypto.KDFParams) (vaultKey []byte, passwordHash string) {
	vaultKey = crypto.DeriveKey(password, encryptionSalt, params)

	h := sha256.New()
	h.Write(vaultKey)
	h.Write([]byte("srp-auth"))
	return vaultKey, hex.EncodeToString(h.Sum(nil))
}

// newCredentials produces the full SRP + KDF material for a fresh password,
// along with the vault key derived from it.
func newCredentials(username, password string) (models.SignupRequest, []byte, error) {
	params := crypto.DefaultKDFParams()
	settings, err := params.Encode()
	if err != nil {
		return models.SignupRequest{}, nil, err
	}

	encryptionSalt, err := crypto.NewEncryptionSalt()
	if err != nil {
		return models.SignupRequest{}, nil, err
	}
	srpSalt, err := srp.NewSalt()
	if err != nil {
		return models.SignupRequest{}, nil, err
	}

	vaultKey, passwordHash := deriveSecrets(password, encryptionSalt, params)
	x := srp.ComputePrivateKey(srpSalt, username, passwordHash)

	return models.SignupRequest{
		Username:           srp.NormalizeUsername(username),
		Salt:               hex.EncodeToString(srpSalt),
		Verifier:           srp.ToHex(srp.ComputeVerifier(x)),
		EncryptionType:     crypto.AlgorithmArgon2id,
		EncryptionSettings: settings,
		EncryptionSalt:     hex.EncodeToString(encryptionSalt),
	}, vaultKey, nil
}

// Register creates a new account. The server receives only the salt, the
// verifier and the opaque key-derivation parameters.
func Register(ctx context.Context, srv adapter.ServerAdapter, username, password string) error {
	req, _, err := newCredentials(username, password)
	if err != nil {
		return fmt.Errorf("generating credentials: %w", err)
	}
	return srv.Signup(ctx, req)
}

// loginProof is the client half of a completed SRP exchange, reusable by
// both login and password change.
type loginProof struct {
	attemptID    string
	username     string
	clientPublic string
	clientProof  string

	sessionKey []byte
	rawProof   []byte
	public     *srp.Ephemeral

	vaultKey []byte
}

func proveCurrentPassword(ctx context.Context, srv adapter.ServerAdapter, username, password string) (loginProof, error) {
	username = srp.NormalizeUsername(username)

	init, err := srv.LoginInit(ctx, models.LoginInitRequest{Username: username})
	if err != nil {
		return loginProof{}, err
	}

	params, err := crypto.ParseParams(init.EncryptionSettings)
	if err != nil {
		return loginProof{}, err
	}
	encryptionSalt, err := hex.DecodeString(init.EncryptionSalt)
	if err != nil {
		return loginProof{}, fmt.Errorf("decoding encryption salt: %w", err)
	}
	srpSalt, err := hex.DecodeString(init.Salt)
	if err != nil {
		return loginProof{}, fmt.Errorf("decoding salt: %w", err)
	}
	serverPublic, err := srp.FromHex(init.ServerPublic)
	if err != nil {
		return loginProof{}, fmt.Errorf("decoding server ephemeral: %w", err)
	}

	ephemeral, err := srp.NewClientEphemeral()
	if err != nil {
		return loginProof{}, err
	}

	vaultKey, passwordHash := deriveSecrets(password, encryptionSalt, params)
	x := srp.ComputePrivateKey(srpSalt, username, passwordHash)

	sessionKey, err := srp.ClientSessionKey(ephemeral.Secret, ephemeral.Public, serverPublic, x)
	if err != nil {
		return loginProof{}, err
	}
	proof := srp.ClientProof(username, srpSalt, ephemeral.Public, serverPublic, sessionKey)

	return loginProof{
		attemptID:    init.AttemptID,
		username:     username,
		clientPublic: srp.ToHex(ephemeral.Public),
		clientProof:  hex.EncodeToString(proof),
		sessionKey:   sessionKey,
		rawProof:     proof,
		public:       &ephemeral,
		vaultKey:     vaultKey,
	}, nil
}

// Login runs the two-round SRP exchange and verifies the server's proof for
// mutual authentication. On success the adapter holds the issued tokens and
// the returned key decrypts the vault.
func Login(ctx context.Context, srv adapter.ServerAdapter, username, password, twoFactorCode, deviceLabel string, rememberMe bool) ([]byte, error) {
	proof, err := proveCurrentPassword(ctx, srv, username, password)
	if err != nil {
		return nil, err
	}

	resp, err := srv.LoginValidate(ctx, models.LoginValidateRequest{
		AttemptID:     proof.attemptID,
		Username:      proof.username,
		ClientPublic:  proof.clientPublic,
		ClientProof:   proof.clientProof,
		RememberMe:    rememberMe,
		DeviceLabel:   deviceLabel,
		TwoFactorCode: twoFactorCode,
	})
	if err != nil {
		return nil, err
	}

	serverProof, err := hex.DecodeString(resp.ServerProof)
	if err != nil {
		return nil, fmt.Errorf("decoding server proof: %w", err)
	}
	expected := srp.ServerProof(proof.public.Public, proof.rawProof, proof.sessionKey)
	if !srp.CheckProof(serverProof, expected) {
		return nil, ErrServerProofMismatch
	}

	return proof.vaultKey, nil
}

// ChangePassword proves the current password over SRP, pulls the latest
// vault, re-encrypts it under a key derived from the new password and swaps
// the credentials and the blob in one server-side transaction. The adapter
// must already hold valid tokens, since the vault pull is an authenticated
// call.
//
// Returns the new vault key and the committed revision number.
func ChangePassword(ctx context.Context, srv adapter.ServerAdapter, username, oldPassword, newPassword, deviceLabel string) ([]byte, int64, error) {
	proof, err := proveCurrentPassword(ctx, srv, username, oldPassword)
	if err != nil {
		return nil, 0, err
	}

	var (
		vault   syncer.Vault
		basedOn int64
	)
	current, err := srv.PullVault(ctx)
	switch {
	case errors.Is(err, adapter.ErrNotFound):
		// No vault yet; the swap still commits an empty revision so the
		// new key has something to fast-forward from.
	case err != nil:
		return nil, 0, err
	default:
		vault, err = syncer.DecodeVault(current.Blob, proof.vaultKey)
		if err != nil {
			return nil, 0, err
		}
		basedOn = current.Revision
	}

	creds, newKey, err := newCredentials(proof.username, newPassword)
	if err != nil {
		return nil, 0, fmt.Errorf("generating replacement credentials: %w", err)
	}

	blob, err := syncer.EncodeVault(vault, newKey)
	if err != nil {
		return nil, 0, err
	}

	revision, err := srv.ChangePassword(ctx, models.ChangePasswordRequest{
		AttemptID:    proof.attemptID,
		Username:     proof.username,
		ClientPublic: proof.clientPublic,
		ClientProof:  proof.clientProof,

		NewSalt:               creds.Salt,
		NewVerifier:           creds.Verifier,
		NewEncryptionType:     creds.EncryptionType,
		NewEncryptionSettings: creds.EncryptionSettings,
		NewEncryptionSalt:     creds.EncryptionSalt,

		Vault: models.VaultPushRequest{
			Blob:             blob,
			BasedOnRevision:  basedOn,
			CredentialsCount: int64(vault.CredentialsCount()),
			EmailAddresses:   vault.EmailAddresses,
			PublicDomains:    vault.PublicDomains,
			PrivateDomains:   vault.PrivateDomains,
			ClientLabel:      deviceLabel,
		},
	})
	if err != nil {
		return nil, 0, err
	}

	return newKey, revision, nil
}
