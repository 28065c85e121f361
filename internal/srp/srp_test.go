package srp

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runExchange performs a full SRP exchange for the given credentials and
// returns both session keys and the client proof.
func runExchange(t *testing.T, username, passwordHash string, salt []byte) (serverKey, clientKey, proof []byte) {
	t.Helper()

	x := ComputePrivateKey(salt, username, passwordHash)
	v := ComputeVerifier(x)

	server, err := NewServerEphemeral(v)
	require.NoError(t, err)
	client, err := NewClientEphemeral()
	require.NoError(t, err)

	serverKey, err = ServerSessionKey(server.Secret, server.Public, client.Public, v)
	require.NoError(t, err)
	clientKey, err = ClientSessionKey(client.Secret, client.Public, server.Public, x)
	require.NoError(t, err)

	proof = ClientProof(username, salt, client.Public, server.Public, clientKey)
	return serverKey, clientKey, proof
}

func TestExchange_SharedKeyAgreement(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)

	serverKey, clientKey, proof := runExchange(t, "Alice@Example.com ", "kdf-output", salt)

	assert.Equal(t, serverKey, clientKey, "both sides must derive the same session key")
	assert.Len(t, proof, 32)
}

func TestExchange_ProofRoundTrip(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)

	username := "bob"
	passwordHash := "argon2id-digest"

	x := ComputePrivateKey(salt, username, passwordHash)
	v := ComputeVerifier(x)

	server, err := NewServerEphemeral(v)
	require.NoError(t, err)
	client, err := NewClientEphemeral()
	require.NoError(t, err)

	serverKey, err := ServerSessionKey(server.Secret, server.Public, client.Public, v)
	require.NoError(t, err)
	clientKey, err := ClientSessionKey(client.Secret, client.Public, server.Public, x)
	require.NoError(t, err)

	m1 := ClientProof(username, salt, client.Public, server.Public, clientKey)
	expectedM1 := ClientProof(username, salt, client.Public, server.Public, serverKey)
	assert.True(t, CheckProof(m1, expectedM1))

	m2 := ServerProof(client.Public, m1, serverKey)
	expectedM2 := ServerProof(client.Public, m1, clientKey)
	assert.True(t, CheckProof(m2, expectedM2))
}

func TestExchange_WrongPasswordFails(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)

	username := "carol"

	// Verifier registered for the correct password.
	x := ComputePrivateKey(salt, username, "right-password-hash")
	v := ComputeVerifier(x)

	server, err := NewServerEphemeral(v)
	require.NoError(t, err)
	client, err := NewClientEphemeral()
	require.NoError(t, err)

	serverKey, err := ServerSessionKey(server.Secret, server.Public, client.Public, v)
	require.NoError(t, err)

	// Client derives its key from a wrong password hash.
	wrongX := ComputePrivateKey(salt, username, "wrong-password-hash")
	clientKey, err := ClientSessionKey(client.Secret, client.Public, server.Public, wrongX)
	require.NoError(t, err)

	m1 := ClientProof(username, salt, client.Public, server.Public, clientKey)
	expected := ClientProof(username, salt, client.Public, server.Public, serverKey)
	assert.False(t, CheckProof(m1, expected), "proof for a wrong password must not validate")
}

func TestExchange_SaltChangesVerifier(t *testing.T) {
	saltA := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	saltB := []byte{1, 2, 3, 4, 5, 6, 7, 9} // single byte differs

	vA := ComputeVerifier(ComputePrivateKey(saltA, "dave", "hash"))
	vB := ComputeVerifier(ComputePrivateKey(saltB, "dave", "hash"))
	assert.NotEqual(t, vA, vB)
}

func TestComputePrivateKey_NormalizesUsername(t *testing.T) {
	salt := []byte{9, 9, 9}
	a := ComputePrivateKey(salt, "  Alice ", "h")
	b := ComputePrivateKey(salt, "alice", "h")
	assert.Equal(t, a, b)
}

func TestServerSessionKey_RejectsZeroClientPublic(t *testing.T) {
	v := ComputeVerifier(big.NewInt(12345))
	server, err := NewServerEphemeral(v)
	require.NoError(t, err)

	// A = 0 and A = N are both congruent to zero mod N.
	for _, a := range []*big.Int{big.NewInt(0), new(big.Int).Set(groupN)} {
		_, err := ServerSessionKey(server.Secret, server.Public, a, v)
		assert.ErrorIs(t, err, ErrInvalidPublicValue)
	}
}

func TestClientSessionKey_RejectsZeroServerPublic(t *testing.T) {
	client, err := NewClientEphemeral()
	require.NoError(t, err)

	_, err = ClientSessionKey(client.Secret, client.Public, big.NewInt(0), big.NewInt(7))
	assert.ErrorIs(t, err, ErrInvalidPublicValue)
}

func TestHexRoundTrip(t *testing.T) {
	client, err := NewClientEphemeral()
	require.NoError(t, err)

	decoded, err := FromHex(ToHex(client.Public))
	require.NoError(t, err)
	assert.Zero(t, decoded.Cmp(client.Public))
}

func TestFromHex_Malformed(t *testing.T) {
	for _, in := range []string{"", "zz", "0x12"} {
		_, err := FromHex(in)
		assert.ErrorIs(t, err, ErrMalformedValue, "input %q", in)
	}
}

func TestCheckProof_LengthMismatch(t *testing.T) {
	assert.False(t, CheckProof([]byte{1, 2}, []byte{1, 2, 3}))
}
