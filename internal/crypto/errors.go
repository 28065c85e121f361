// SPDX-License-Identifier: Apache-2.0

package crypto

import "errors"

var (
	ErrInvalidKDFParams   = errors.New("invalid key derivation parameters")
	ErrCiphertextTooShort = errors.New("ciphertext is too short")
	ErrDecryptionFailed   = errors.New("decryption failed")
)
