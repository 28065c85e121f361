package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/passvault-io/passvault/internal/clock"
	"github.com/passvault-io/passvault/internal/logger"
	"github.com/passvault-io/passvault/internal/srp"
	"github.com/passvault-io/passvault/internal/store"
	"github.com/passvault-io/passvault/internal/totp"
	"github.com/passvault-io/passvault/internal/utils"
	"github.com/passvault-io/passvault/models"
)

// authService is the concrete implementation of AuthService.
// The server never sees a password: clients register an SRP verifier and
// prove knowledge of the password through the two-step exchange. In-flight
// exchanges live in the single-use login session store.
type authService struct {
	userRepository  store.UserRepository
	auditRepository store.AuditRepository

	// sessions holds the ephemeral state between LoginInit and
	// LoginValidate. Entries are consumed exactly once.
	sessions *store.LoginSessionStore

	// tokens mints the access/refresh pair once a proof verifies.
	tokens TokenService

	clock clock.Clock
	uuid  *utils.UUIDGenerator

	logger *logger.Logger
}

// NewAuthService constructs an AuthService wired to the given repositories
// and login session store.
//
// The returned service is safe for concurrent use; all state besides the
// session store is read-only after construction.
func NewAuthService(repos *store.Repositories, sessions *store.LoginSessionStore, tokens TokenService, clk clock.Clock, logger *logger.Logger) AuthService {
	return &authService{
		userRepository:  repos.UserRepository,
		auditRepository: repos.AuditRepository,
		sessions:        sessions,
		tokens:          tokens,
		clock:           clk,
		uuid:            utils.NewUUIDGenerator(),
		logger:          logger,
	}
}

// Signup registers a new account from client-derived SRP material.
//
// The username is normalized (lowercased, trimmed) before storage so that
// lookups at login init hit the same row. The verifier is parsed to reject
// garbage before it reaches the database.
//
// Returns the persisted user (with a server-assigned UserID) or:
//   - ErrInvalidDataProvided if username, salt or verifier is empty or the
//     hex material does not parse.
//   - A wrapped storage error if the repository call fails (e.g. username
//     already taken, see store.ErrUsernameAlreadyExists).
func (a *authService) Signup(ctx context.Context, req models.SignupRequest) (models.User, error) {
	log := logger.FromContext(ctx)

	if req.Username == "" || req.Salt == "" || req.Verifier == "" {
		log.Error().Str("username", req.Username).Msg("invalid signup data provided")
		return models.User{}, ErrInvalidDataProvided
	}
	if _, err := srp.FromHex(req.Verifier); err != nil {
		log.Err(err).Msg("malformed verifier provided")
		return models.User{}, ErrInvalidDataProvided
	}
	if _, err := hex.DecodeString(req.Salt); err != nil {
		log.Err(err).Msg("malformed salt provided")
		return models.User{}, ErrInvalidDataProvided
	}

	user := models.User{
		Username:           srp.NormalizeUsername(req.Username),
		Salt:               req.Salt,
		Verifier:           req.Verifier,
		EncryptionType:     req.EncryptionType,
		EncryptionSettings: req.EncryptionSettings,
		EncryptionSalt:     req.EncryptionSalt,
	}

	registeredUser, err := a.userRepository.CreateUser(ctx, user)
	if err != nil {
		log.Err(err).Str("username", user.Username).Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	a.recordAudit(ctx, registeredUser.UserID, models.AuditSignup, "account created")

	return registeredUser, nil
}

// LoginInit starts an SRP exchange for the given username.
//
// It looks the account up, generates a fresh server ephemeral bound to the
// stored verifier and parks the exchange state in the session store under a
// new attempt ID. An unknown username is reported as ErrAuthenticationFailed
// so the endpoint does not confirm which accounts exist.
func (a *authService) LoginInit(ctx context.Context, req models.LoginInitRequest) (models.LoginInitResponse, error) {
	log := logger.FromContext(ctx)

	if req.Username == "" {
		log.Error().Msg("empty username on login init")
		return models.LoginInitResponse{}, ErrInvalidDataProvided
	}

	username := srp.NormalizeUsername(req.Username)

	user, err := a.userRepository.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			log.Warn().Str("username", username).Msg("login init for unknown username")
			return models.LoginInitResponse{}, ErrAuthenticationFailed
		}
		log.Err(err).Str("username", username).Msg("user search by username failed")
		return models.LoginInitResponse{}, fmt.Errorf("user search by username failed: %w", err)
	}

	verifier, err := srp.FromHex(user.Verifier)
	if err != nil {
		log.Err(err).Int64("userID", user.UserID).Msg("stored verifier does not parse")
		return models.LoginInitResponse{}, fmt.Errorf("stored verifier does not parse: %w", err)
	}
	salt, err := hex.DecodeString(user.Salt)
	if err != nil {
		log.Err(err).Int64("userID", user.UserID).Msg("stored salt does not parse")
		return models.LoginInitResponse{}, fmt.Errorf("stored salt does not parse: %w", err)
	}

	ephemeral, err := srp.NewServerEphemeral(verifier)
	if err != nil {
		log.Err(err).Msg("server ephemeral generation failed")
		return models.LoginInitResponse{}, fmt.Errorf("server ephemeral generation failed: %w", err)
	}

	attemptID := a.uuid.Generate()
	a.sessions.Put(store.LoginSession{
		AttemptID:    attemptID,
		UserID:       user.UserID,
		Username:     username,
		Salt:         salt,
		Verifier:     verifier,
		ServerSecret: ephemeral.Secret,
		ServerPublic: ephemeral.Public,
	})

	return models.LoginInitResponse{
		AttemptID:          attemptID,
		Salt:               user.Salt,
		ServerPublic:       srp.ToHex(ephemeral.Public),
		EncryptionType:     user.EncryptionType,
		EncryptionSettings: user.EncryptionSettings,
		EncryptionSalt:     user.EncryptionSalt,
	}, nil
}

// LoginValidate completes an SRP exchange.
//
// The attempt's session is consumed before any verification happens, so a
// failed (or replayed) validate forces a fresh LoginInit. When the account
// has a second factor enrolled, the TOTP code is checked in the same call:
// a missing code yields ErrTwoFactorRequired, a wrong one the generic
// ErrAuthenticationFailed. Tokens are issued only after every check passed.
func (a *authService) LoginValidate(ctx context.Context, req models.LoginValidateRequest) (models.LoginValidateResponse, error) {
	log := logger.FromContext(ctx)

	session, key, clientProof, err := a.verifyProof(ctx, req.AttemptID, req.Username, req.ClientPublic, req.ClientProof)
	if err != nil {
		return models.LoginValidateResponse{}, err
	}

	user, err := a.userRepository.FindUserByUsername(ctx, session.Username)
	if err != nil {
		log.Err(err).Str("username", session.Username).Msg("user search by username failed")
		return models.LoginValidateResponse{}, fmt.Errorf("user search by username failed: %w", err)
	}

	if user.TotpSecret != "" {
		if req.TwoFactorCode == "" {
			return models.LoginValidateResponse{RequiresTwoFactor: true}, ErrTwoFactorRequired
		}
		if !totp.Verify(req.TwoFactorCode, user.TotpSecret, a.clock.Now()) {
			a.recordAudit(ctx, session.UserID, models.AuditLoginFailed, "wrong two-factor code")
			log.Warn().Int64("userID", session.UserID).Msg("wrong two-factor code")
			return models.LoginValidateResponse{}, ErrAuthenticationFailed
		}
	}

	pair, err := a.tokens.Issue(ctx, session.UserID, req.DeviceLabel, req.RememberMe)
	if err != nil {
		log.Err(err).Int64("userID", session.UserID).Msg("token issuance failed")
		return models.LoginValidateResponse{}, fmt.Errorf("token issuance failed: %w", err)
	}

	clientPublic, _ := srp.FromHex(req.ClientPublic)
	serverProof := srp.ServerProof(clientPublic, clientProof, key)

	a.recordAudit(ctx, session.UserID, models.AuditLogin, "login from "+req.DeviceLabel)

	return models.LoginValidateResponse{
		ServerProof: fmt.Sprintf("%x", serverProof),
		Tokens:      &pair,
	}, nil
}

// ChangePassword atomically swaps the account's SRP credentials and commits
// the vault re-encrypted under the new key.
//
// Proof of the current password is a completed SRP exchange against the old
// verifier, carried by the attempt fields. The credential swap and the vault
// push share one database transaction: a concurrent push from another device
// rolls the whole change back with store.ErrVaultConflict.
func (a *authService) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) (int64, error) {
	log := logger.FromContext(ctx)

	if req.NewSalt == "" || req.NewVerifier == "" {
		log.Error().Msg("empty replacement credentials")
		return 0, ErrInvalidDataProvided
	}
	if _, err := srp.FromHex(req.NewVerifier); err != nil {
		log.Err(err).Msg("malformed replacement verifier")
		return 0, ErrInvalidDataProvided
	}

	session, _, _, err := a.verifyProof(ctx, req.AttemptID, req.Username, req.ClientPublic, req.ClientProof)
	if err != nil {
		return 0, err
	}

	user := models.User{
		UserID:             session.UserID,
		Username:           session.Username,
		Salt:               req.NewSalt,
		Verifier:           req.NewVerifier,
		EncryptionType:     req.NewEncryptionType,
		EncryptionSettings: req.NewEncryptionSettings,
		EncryptionSalt:     req.NewEncryptionSalt,
	}

	rev := revisionFromPush(session.UserID, req.Vault)

	revision, err := a.userRepository.ReplaceCredentials(ctx, user, rev)
	if err != nil {
		log.Err(err).Int64("userID", session.UserID).Msg("credential replacement failed")
		return 0, fmt.Errorf("credential replacement failed: %w", err)
	}

	a.recordAudit(ctx, session.UserID, models.AuditPassword, "credentials replaced")

	return revision, nil
}

// verifyProof consumes the login session and checks the client's SRP proof
// against it. On success it returns the session, the shared session key and
// the verified client proof (both needed to build the server proof).
//
// Consume-then-verify ordering means every failure path still burns the
// session, which is what makes online guessing cost one full round trip per
// attempt.
func (a *authService) verifyProof(ctx context.Context, attemptID, username, clientPublicHex, clientProofHex string) (store.LoginSession, []byte, []byte, error) {
	log := logger.FromContext(ctx)

	session, err := a.sessions.Consume(attemptID)
	if err != nil {
		log.Warn().Str("attemptID", attemptID).Msg("login session not found or expired")
		return store.LoginSession{}, nil, nil, ErrLoginSessionExpired
	}

	if srp.NormalizeUsername(username) != session.Username {
		a.recordAudit(ctx, session.UserID, models.AuditLoginFailed, "username mismatch")
		return store.LoginSession{}, nil, nil, ErrAuthenticationFailed
	}

	clientPublic, err := srp.FromHex(clientPublicHex)
	if err != nil {
		return store.LoginSession{}, nil, nil, ErrAuthenticationFailed
	}
	clientProof, err := hex.DecodeString(clientProofHex)
	if err != nil {
		return store.LoginSession{}, nil, nil, ErrAuthenticationFailed
	}

	key, err := srp.ServerSessionKey(session.ServerSecret, session.ServerPublic, clientPublic, session.Verifier)
	if err != nil {
		a.recordAudit(ctx, session.UserID, models.AuditLoginFailed, "illegal client public value")
		log.Warn().Int64("userID", session.UserID).Msg("illegal client public value")
		return store.LoginSession{}, nil, nil, ErrAuthenticationFailed
	}

	expected := srp.ClientProof(session.Username, session.Salt, clientPublic, session.ServerPublic, key)
	if !srp.CheckProof(clientProof, expected) {
		a.recordAudit(ctx, session.UserID, models.AuditLoginFailed, "bad client proof")
		log.Warn().Int64("userID", session.UserID).Msg("bad client proof")
		return store.LoginSession{}, nil, nil, ErrAuthenticationFailed
	}

	return session, key, expected, nil
}

// recordAudit appends an audit event, tolerating failures: the trail is an
// observability aid, never a gate on the operation that produced the event.
func (a *authService) recordAudit(ctx context.Context, userID int64, action, detail string) {
	event := models.AuditEvent{
		UserID:    userID,
		Action:    action,
		Detail:    detail,
		CreatedAt: a.clock.Now(),
	}
	if err := a.auditRepository.Record(ctx, event); err != nil {
		logger.FromContext(ctx).Err(err).Str("action", action).Msg("audit record failed")
	}
}
