package service

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passvault-io/passvault/internal/clock"
	"github.com/passvault-io/passvault/internal/config"
	"github.com/passvault-io/passvault/internal/logger"
	"github.com/passvault-io/passvault/internal/retention"
	"github.com/passvault-io/passvault/internal/srp"
	"github.com/passvault-io/passvault/internal/store"
	"github.com/passvault-io/passvault/internal/totp"
	"github.com/passvault-io/passvault/models"
)

const (
	testUsername     = "alice"
	testPasswordHash = "client-side-kdf-output"
)

type testEnv struct {
	services *Services
	users    *fakeUserRepository
	vault    *fakeVaultRepository
	refresh  *fakeRefreshTokenRepository
	audit    *fakeAuditRepository
	clock    *clock.FrozenClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repos, users, vault, refresh, audit := newFakeRepositories()
	clk := clock.Frozen(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	sessions := store.NewLoginSessionStore(5*time.Minute, clk, logger.Nop())

	cfg := config.App{
		TokenIssuer:          "passvault-test",
		TokenSignKey:         "unit-test-sign-key",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 30 * 24 * time.Hour,
		RememberMeDuration:   90 * 24 * time.Hour,
	}

	return &testEnv{
		services: NewServices(repos, sessions, retention.NewPolicy(), cfg, clk, logger.Nop()),
		users:    users,
		vault:    vault,
		refresh:  refresh,
		audit:    audit,
		clock:    clk,
	}
}

// signup registers testUsername with SRP material derived the way a real
// client would derive it, and returns the account.
func (e *testEnv) signup(t *testing.T) models.User {
	t.Helper()

	salt, err := srp.NewSalt()
	require.NoError(t, err)

	x := srp.ComputePrivateKey(salt, testUsername, testPasswordHash)
	v := srp.ComputeVerifier(x)

	user, err := e.services.AuthService.Signup(context.Background(), models.SignupRequest{
		Username:           testUsername,
		Salt:               hex.EncodeToString(salt),
		Verifier:           srp.ToHex(v),
		EncryptionType:     "argon2id",
		EncryptionSettings: `{"m":65536,"t":3,"p":4}`,
		EncryptionSalt:     "00112233",
	})
	require.NoError(t, err)
	return user
}

// loginAttempt runs LoginInit and computes the client half of the exchange
// for the given password hash.
func (e *testEnv) loginAttempt(t *testing.T, passwordHash string) models.LoginValidateRequest {
	t.Helper()

	init, err := e.services.AuthService.LoginInit(context.Background(), models.LoginInitRequest{Username: testUsername})
	require.NoError(t, err)

	salt, err := hex.DecodeString(init.Salt)
	require.NoError(t, err)
	serverPublic, err := srp.FromHex(init.ServerPublic)
	require.NoError(t, err)

	eph, err := srp.NewClientEphemeral()
	require.NoError(t, err)

	x := srp.ComputePrivateKey(salt, testUsername, passwordHash)
	key, err := srp.ClientSessionKey(eph.Secret, eph.Public, serverPublic, x)
	require.NoError(t, err)

	proof := srp.ClientProof(testUsername, salt, eph.Public, serverPublic, key)

	return models.LoginValidateRequest{
		AttemptID:    init.AttemptID,
		Username:     testUsername,
		ClientPublic: srp.ToHex(eph.Public),
		ClientProof:  hex.EncodeToString(proof),
		DeviceLabel:  "laptop",
	}
}

func TestAuthService_SignupAndLogin(t *testing.T) {
	env := newTestEnv(t)
	user := env.signup(t)
	assert.Equal(t, testUsername, user.Username)

	req := env.loginAttempt(t, testPasswordHash)
	resp, err := env.services.AuthService.LoginValidate(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, resp.RequiresTwoFactor)
	assert.NotEmpty(t, resp.ServerProof)
	require.NotNil(t, resp.Tokens)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)

	// The issued access token belongs to the registered user.
	userID, err := env.services.TokenService.Validate(context.Background(), resp.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, userID)

	assert.Contains(t, env.audit.actions(), models.AuditLogin)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t)

	req := env.loginAttempt(t, "not-the-right-hash")
	resp, err := env.services.AuthService.LoginValidate(context.Background(), req)

	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.Nil(t, resp.Tokens)
	assert.Contains(t, env.audit.actions(), models.AuditLoginFailed)
}

func TestAuthService_Login_UnknownUsername(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.services.AuthService.LoginInit(context.Background(), models.LoginInitRequest{Username: "nobody"})
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestAuthService_Login_AttemptIsSingleUse(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t)

	req := env.loginAttempt(t, testPasswordHash)
	_, err := env.services.AuthService.LoginValidate(context.Background(), req)
	require.NoError(t, err)

	// Replaying the same attempt must fail: the session was consumed.
	_, err = env.services.AuthService.LoginValidate(context.Background(), req)
	assert.ErrorIs(t, err, ErrLoginSessionExpired)
}

func TestAuthService_Login_AttemptExpires(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t)

	req := env.loginAttempt(t, testPasswordHash)
	env.clock.Advance(6 * time.Minute)

	_, err := env.services.AuthService.LoginValidate(context.Background(), req)
	assert.ErrorIs(t, err, ErrLoginSessionExpired)
}

func TestAuthService_Signup_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t)

	salt, err := srp.NewSalt()
	require.NoError(t, err)
	v := srp.ComputeVerifier(srp.ComputePrivateKey(salt, testUsername, "other"))

	_, err = env.services.AuthService.Signup(context.Background(), models.SignupRequest{
		Username: testUsername,
		Salt:     hex.EncodeToString(salt),
		Verifier: srp.ToHex(v),
	})
	assert.ErrorIs(t, err, store.ErrUsernameAlreadyExists)
}

func TestAuthService_Signup_RejectsGarbage(t *testing.T) {
	env := newTestEnv(t)

	cases := []models.SignupRequest{
		{Username: "", Salt: "aa", Verifier: "bb"},
		{Username: "bob", Salt: "", Verifier: "bb"},
		{Username: "bob", Salt: "aa", Verifier: ""},
		{Username: "bob", Salt: "aa", Verifier: "not hex"},
		{Username: "bob", Salt: "zz", Verifier: "bb"},
	}
	for _, req := range cases {
		_, err := env.services.AuthService.Signup(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidDataProvided)
	}
}

func TestAuthService_Login_TwoFactor(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t)

	secret, err := totp.GenerateSecret()
	require.NoError(t, err)
	env.users.mu.Lock()
	user := env.users.users[testUsername]
	user.TotpSecret = secret
	env.users.users[testUsername] = user
	env.users.mu.Unlock()

	// No code: the proof verified but tokens are withheld.
	req := env.loginAttempt(t, testPasswordHash)
	resp, err := env.services.AuthService.LoginValidate(context.Background(), req)
	assert.ErrorIs(t, err, ErrTwoFactorRequired)
	assert.True(t, resp.RequiresTwoFactor)
	assert.Nil(t, resp.Tokens)

	// Wrong code: indistinguishable from a bad password.
	req = env.loginAttempt(t, testPasswordHash)
	req.TwoFactorCode = "000000"
	_, err = env.services.AuthService.LoginValidate(context.Background(), req)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	// Right code: full pair issued.
	code, err := totp.Code(secret, env.clock.Now())
	require.NoError(t, err)
	req = env.loginAttempt(t, testPasswordHash)
	req.TwoFactorCode = code
	resp, err = env.services.AuthService.LoginValidate(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, resp.Tokens)
}

func TestAuthService_ChangePassword(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t)

	newSalt, err := srp.NewSalt()
	require.NoError(t, err)
	newVerifier := srp.ComputeVerifier(srp.ComputePrivateKey(newSalt, testUsername, "new-password-hash"))

	attempt := env.loginAttempt(t, testPasswordHash)
	revision, err := env.services.AuthService.ChangePassword(context.Background(), models.ChangePasswordRequest{
		AttemptID:    attempt.AttemptID,
		Username:     testUsername,
		ClientPublic: attempt.ClientPublic,
		ClientProof:  attempt.ClientProof,
		NewSalt:      hex.EncodeToString(newSalt),
		NewVerifier:  srp.ToHex(newVerifier),
		Vault: models.VaultPushRequest{
			Blob:            []byte("re-encrypted"),
			BasedOnRevision: 0,
			ClientLabel:     "laptop",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), revision)

	// The old password no longer verifies, the new one does.
	req := env.loginAttempt(t, testPasswordHash)
	_, err = env.services.AuthService.LoginValidate(context.Background(), req)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	req = env.loginAttempt(t, "new-password-hash")
	_, err = env.services.AuthService.LoginValidate(context.Background(), req)
	assert.NoError(t, err)
}

func TestAuthService_ChangePassword_WrongProof(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t)

	attempt := env.loginAttempt(t, "wrong-password-hash")
	_, err := env.services.AuthService.ChangePassword(context.Background(), models.ChangePasswordRequest{
		AttemptID:    attempt.AttemptID,
		Username:     testUsername,
		ClientPublic: attempt.ClientPublic,
		ClientProof:  attempt.ClientProof,
		NewSalt:      "aabb",
		NewVerifier:  "cc",
	})
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}
