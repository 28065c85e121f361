// SPDX-License-Identifier: Apache-2.0

// Package crypto holds the client-side primitives for vault encryption:
// Argon2id key derivation from the master password and an XChaCha20-Poly1305
// AEAD for sealing the serialized vault. Nothing in this package ever runs on
// the server; the server only stores the opaque parameters and ciphertext.
package crypto

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// AlgorithmArgon2id is the only key-derivation algorithm currently issued to
// new accounts. The identifier is stored on the user record so future
// algorithms can coexist with old vaults.
const AlgorithmArgon2id = "argon2id"

const keyLen = 32

// KDFParams are the Argon2id tuning parameters chosen at signup and stored
// server-side as opaque encryption settings.
type KDFParams struct {
	Memory      uint32 `json:"memory"`
	Iterations  uint32 `json:"iterations"`
	Parallelism uint8  `json:"parallelism"`
}

// DefaultKDFParams returns the Argon2id parameters recommended by OWASP
// (2024): 64 MiB memory, 3 iterations, 4 threads.
func DefaultKDFParams() KDFParams {
	return KDFParams{
		Memory:      64 * 1024, // 64 MiB
		Iterations:  3,
		Parallelism: 4,
	}
}

// Encode serializes the parameters into the string form stored on the user
// record as encryption settings.
func (p KDFParams) Encode() (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encoding KDF params: %w", err)
	}
	return string(raw), nil
}

// ParseParams parses encryption settings previously produced by Encode.
func ParseParams(settings string) (KDFParams, error) {
	var p KDFParams
	if err := json.Unmarshal([]byte(settings), &p); err != nil {
		return KDFParams{}, fmt.Errorf("%w: %v", ErrInvalidKDFParams, err)
	}
	if p.Memory == 0 || p.Iterations == 0 || p.Parallelism == 0 {
		return KDFParams{}, ErrInvalidKDFParams
	}
	return p, nil
}

// NewEncryptionSalt reads 16 random bytes from the OS CSPRNG. The result is
// stored server-side next to the KDF parameters, distinct from the SRP salt.
func NewEncryptionSalt() ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// DeriveKey derives the 256-bit vault encryption key from the master
// password. The key exists only in client memory and never reaches the
// server.
func DeriveKey(masterPassword string, salt []byte, p KDFParams) []byte {
	return argon2.IDKey([]byte(masterPassword), salt, p.Iterations, p.Memory, p.Parallelism, keyLen)
}
