// Package totp implements RFC 6238 time-based one-time passwords, used as
// the optional second authentication factor. Verification takes an explicit
// instant so that the caller can supply the application clock.
package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

const (
	// Step is the time-step window of the generated codes.
	Step = 30 * time.Second

	// Digits is the number of decimal digits in a code.
	Digits = 6

	// secretSize is the raw secret length (160 bits, per RFC 4226).
	secretSize = 20
)

// GenerateSecret returns a fresh base32-encoded shared secret suitable for
// enrollment in any standard authenticator application.
func GenerateSecret() (string, error) {
	secret := make([]byte, secretSize)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("generating totp secret: %w", err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret), nil
}

// Code returns the code valid for secret at the instant when. Used by the
// client side of two-factor enrollment.
func Code(secret string, when time.Time) (string, error) {
	secretBytes, err := decodeSecret(secret)
	if err != nil {
		return "", fmt.Errorf("decoding totp secret: %w", err)
	}
	counter := when.Unix() / int64(Step/time.Second)
	return computeCode(secretBytes, uint64(counter)), nil
}

// Verify reports whether code is valid for secret at the instant when.
// One step of clock skew is tolerated in each direction.
func Verify(code, secret string, when time.Time) bool {
	code = strings.TrimSpace(code)
	if len(code) != Digits {
		return false
	}

	secretBytes, err := decodeSecret(secret)
	if err != nil {
		return false
	}

	step := int64(Step / time.Second)
	counter := when.Unix() / step
	for i := int64(-1); i <= 1; i++ {
		cur := counter + i
		if cur < 0 {
			continue
		}
		if computeCode(secretBytes, uint64(cur)) == code {
			return true
		}
	}
	return false
}

// ProvisionURI builds the otpauth:// enrollment URI encoded into QR codes
// by client applications.
func ProvisionURI(account, issuer, secret string) string {
	account = strings.ReplaceAll(account, " ", "")
	issuer = strings.ReplaceAll(issuer, " ", "")
	return fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s&period=%d&digits=%d",
		issuer, account, secret, issuer, int(Step/time.Second), Digits)
}

func decodeSecret(secret string) ([]byte, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(secret), " ", ""))
	return base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(normalized)
}

// computeCode implements the HOTP truncation from RFC 4226, section 5.3.
func computeCode(secret []byte, counter uint64) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], counter)

	mac := hmac.New(sha1.New, secret)
	mac.Write(buf[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	value := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	mod := uint32(1)
	for i := 0; i < Digits; i++ {
		mod *= 10
	}
	return fmt.Sprintf("%0*d", Digits, value%mod)
}
