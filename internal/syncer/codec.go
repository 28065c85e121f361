// SPDX-License-Identifier: Apache-2.0

package syncer

import (
	"encoding/json"
	"fmt"

	"github.com/passvault-io/passvault/internal/crypto"
)

// EncodeVault serializes the vault and seals it under the vault key. The
// result is the opaque blob the server stores as a revision.
func EncodeVault(v Vault, key []byte) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("serializing vault: %w", err)
	}
	return crypto.Seal(key, raw)
}

// DecodeVault opens a blob produced by EncodeVault.
func DecodeVault(blob, key []byte) (Vault, error) {
	raw, err := crypto.Open(key, blob)
	if err != nil {
		return Vault{}, err
	}

	var v Vault
	if err := json.Unmarshal(raw, &v); err != nil {
		return Vault{}, fmt.Errorf("deserializing vault: %w", err)
	}
	return v, nil
}
