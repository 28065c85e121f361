// Package srp implements the SRP-6a password-authenticated key exchange
// used by the authentication service. The server proves possession of the
// stored verifier and the client proves knowledge of the password; neither
// the password nor any password-equivalent value crosses the wire.
//
// All multi-precision values are exchanged as lowercase hex strings. Hash
// inputs are left-padded to the group width so that both sides produce
// identical digests regardless of leading zero bytes.
package srp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// ephemeralBytes is the size of the random secret exponents a and b.
const ephemeralBytes = 32

// Ephemeral is one side's ephemeral keypair for a single exchange.
// Secret must never leave the process that generated it.
type Ephemeral struct {
	Secret *big.Int
	Public *big.Int
}

// NormalizeUsername canonicalizes a username the way both signup and login
// must: trimmed of surrounding whitespace and lowercased. Verifier and proof
// computations bind the canonical form, so lookups must use it too.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ComputePrivateKey derives the SRP private key
// x = H(salt, H(username ":" passwordHash)).
//
// passwordHash is expected to already be the output of the client-side
// memory-hard KDF; the plain password must never be passed here directly.
func ComputePrivateKey(salt []byte, username, passwordHash string) *big.Int {
	inner := sha256.Sum256([]byte(NormalizeUsername(username) + ":" + passwordHash))

	outer := sha256.New()
	outer.Write(salt)
	outer.Write(inner[:])

	return new(big.Int).SetBytes(outer.Sum(nil))
}

// ComputeVerifier returns v = g^x mod N for the given private key.
// The verifier is safe to store server-side: recovering x from it requires
// solving the discrete logarithm in the 2048-bit group.
func ComputeVerifier(x *big.Int) *big.Int {
	return new(big.Int).Exp(groupG, x, groupN)
}

// NewClientEphemeral generates the client keypair (a, A = g^a mod N).
func NewClientEphemeral() (Ephemeral, error) {
	secret, err := randomInt()
	if err != nil {
		return Ephemeral{}, fmt.Errorf("generating client ephemeral: %w", err)
	}

	return Ephemeral{
		Secret: secret,
		Public: new(big.Int).Exp(groupG, secret, groupN),
	}, nil
}

// NewServerEphemeral generates the server keypair for the given verifier:
// (b, B = k*v + g^b mod N). B depends on the verifier, which is what lets
// the client detect a server that does not actually hold it.
func NewServerEphemeral(verifier *big.Int) (Ephemeral, error) {
	secret, err := randomInt()
	if err != nil {
		return Ephemeral{}, fmt.Errorf("generating server ephemeral: %w", err)
	}

	gb := new(big.Int).Exp(groupG, secret, groupN)
	kv := new(big.Int).Mul(multiplierK, verifier)
	public := kv.Add(kv, gb)
	public.Mod(public, groupN)

	return Ephemeral{Secret: secret, Public: public}, nil
}

// ServerSessionKey computes the shared session key on the server side:
// S = (A * v^u)^b mod N, K = H(PAD(S)).
//
// Returns ErrInvalidPublicValue when A mod N == 0, which a malicious client
// could use to force a predictable key.
func ServerSessionKey(serverSecret, serverPublic, clientPublic, verifier *big.Int) ([]byte, error) {
	if isZeroModN(clientPublic) {
		return nil, ErrInvalidPublicValue
	}

	u := scrambler(clientPublic, serverPublic)
	if u.Sign() == 0 {
		return nil, ErrInvalidPublicValue
	}

	vu := new(big.Int).Exp(verifier, u, groupN)
	base := vu.Mul(clientPublic, vu)
	base.Mod(base, groupN)
	s := base.Exp(base, serverSecret, groupN)

	key := sha256.Sum256(pad(s))
	return key[:], nil
}

// ClientSessionKey computes the shared session key on the client side:
// S = (B - k*g^x)^(a + u*x) mod N, K = H(PAD(S)).
//
// Returns ErrInvalidPublicValue when B mod N == 0 (a server presenting such
// a value cannot know the verifier).
func ClientSessionKey(clientSecret, clientPublic, serverPublic, privateKey *big.Int) ([]byte, error) {
	if isZeroModN(serverPublic) {
		return nil, ErrInvalidPublicValue
	}

	u := scrambler(clientPublic, serverPublic)
	if u.Sign() == 0 {
		return nil, ErrInvalidPublicValue
	}

	// B - k*g^x rearranged into the positive residue class.
	gx := new(big.Int).Exp(groupG, privateKey, groupN)
	kgx := gx.Mul(multiplierK, gx)
	base := new(big.Int).Sub(serverPublic, kgx)
	base.Mod(base, groupN)

	exp := new(big.Int).Mul(u, privateKey)
	exp.Add(exp, clientSecret)
	s := base.Exp(base, exp, groupN)

	key := sha256.Sum256(pad(s))
	return key[:], nil
}

// ClientProof computes M1 = H(H(N) xor H(g), H(username), salt, PAD(A),
// PAD(B), K). The server recomputes the same value from stored state and
// compares in constant time.
func ClientProof(username string, salt []byte, clientPublic, serverPublic *big.Int, key []byte) []byte {
	hn := sha256.Sum256(pad(groupN))
	hg := sha256.Sum256(pad(groupG))
	for i := range hn {
		hn[i] ^= hg[i]
	}
	hu := sha256.Sum256([]byte(NormalizeUsername(username)))

	h := sha256.New()
	h.Write(hn[:])
	h.Write(hu[:])
	h.Write(salt)
	h.Write(pad(clientPublic))
	h.Write(pad(serverPublic))
	h.Write(key)
	return h.Sum(nil)
}

// ServerProof computes M2 = H(PAD(A), M1, K), the server's half of the
// mutual authentication. A client that verifies M2 knows the server holds
// the real verifier.
func ServerProof(clientPublic *big.Int, clientProof, key []byte) []byte {
	h := sha256.New()
	h.Write(pad(clientPublic))
	h.Write(clientProof)
	h.Write(key)
	return h.Sum(nil)
}

// CheckProof compares two proof values in constant time.
func CheckProof(got, want []byte) bool {
	return len(got) == len(want) && subtle.ConstantTimeCompare(got, want) == 1
}

// ToHex encodes a group element as a lowercase hex string for the wire.
func ToHex(v *big.Int) string {
	return hex.EncodeToString(v.Bytes())
}

// FromHex decodes a wire hex string into a group element.
func FromHex(s string) (*big.Int, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedValue, err)
	}
	if len(b) == 0 {
		return nil, ErrMalformedValue
	}
	return new(big.Int).SetBytes(b), nil
}

// NewSalt returns a fresh random SRP salt.
func NewSalt() ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	return salt, nil
}

// scrambler computes u = H(PAD(A), PAD(B)).
func scrambler(clientPublic, serverPublic *big.Int) *big.Int {
	h := sha256.New()
	h.Write(pad(clientPublic))
	h.Write(pad(serverPublic))
	return new(big.Int).SetBytes(h.Sum(nil))
}

func isZeroModN(v *big.Int) bool {
	return new(big.Int).Mod(v, groupN).Sign() == 0
}

func randomInt() (*big.Int, error) {
	b := make([]byte, ephemeralBytes)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	v := new(big.Int).SetBytes(b)
	if v.Sign() == 0 {
		v.SetInt64(1)
	}
	return v, nil
}
