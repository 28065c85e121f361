package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passvault-io/passvault/internal/logger"
	"github.com/passvault-io/passvault/internal/service"
	"github.com/passvault-io/passvault/internal/store"
	"github.com/passvault-io/passvault/models"
)

// Stub services implementing the service interfaces with canned behavior.
// Handler tests only care about routing, decoding and status mapping; the
// service semantics are covered by the service package tests.

type stubAuthService struct {
	signupErr   error
	loginErr    error
	validateErr error
	response    models.LoginValidateResponse
}

func (s *stubAuthService) Signup(_ context.Context, req models.SignupRequest) (models.User, error) {
	if s.signupErr != nil {
		return models.User{}, s.signupErr
	}
	return models.User{UserID: 1, Username: req.Username}, nil
}

func (s *stubAuthService) LoginInit(_ context.Context, _ models.LoginInitRequest) (models.LoginInitResponse, error) {
	if s.loginErr != nil {
		return models.LoginInitResponse{}, s.loginErr
	}
	return models.LoginInitResponse{AttemptID: "attempt-1", Salt: "aa", ServerPublic: "bb"}, nil
}

func (s *stubAuthService) LoginValidate(_ context.Context, _ models.LoginValidateRequest) (models.LoginValidateResponse, error) {
	return s.response, s.validateErr
}

func (s *stubAuthService) ChangePassword(_ context.Context, _ models.ChangePasswordRequest) (int64, error) {
	if s.validateErr != nil {
		return 0, s.validateErr
	}
	return 3, nil
}

type stubTokenService struct {
	userID      int64
	validateErr error
	refreshErr  error
}

func (s *stubTokenService) Issue(_ context.Context, userID int64, _ string, _ bool) (models.TokenPair, error) {
	return models.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (s *stubTokenService) Validate(_ context.Context, _ string) (int64, error) {
	return s.userID, s.validateErr
}

func (s *stubTokenService) Refresh(_ context.Context, _ models.RefreshRequest) (models.TokenPair, error) {
	if s.refreshErr != nil {
		return models.TokenPair{}, s.refreshErr
	}
	return models.TokenPair{AccessToken: "access2", RefreshToken: "refresh2"}, nil
}

type stubVaultService struct {
	pushRevision int64
	pushErr      error
	pullErr      error
	current      models.VaultRevision
	history      []models.VaultRevision
}

func (s *stubVaultService) Push(_ context.Context, _ int64, _ models.VaultPushRequest) (int64, error) {
	return s.pushRevision, s.pushErr
}

func (s *stubVaultService) Pull(_ context.Context, _ int64) (models.VaultRevision, error) {
	return s.current, s.pullErr
}

func (s *stubVaultService) PullSince(_ context.Context, _, _ int64) ([]models.VaultRevision, error) {
	return s.history, s.pullErr
}

func newTestHandler(auth *stubAuthService, tokens *stubTokenService, vault *stubVaultService) *Handler {
	if auth == nil {
		auth = &stubAuthService{}
	}
	if tokens == nil {
		tokens = &stubTokenService{userID: 1}
	}
	if vault == nil {
		vault = &stubVaultService{}
	}
	services := &service.Services{
		AuthService:  auth,
		TokenService: tokens,
		VaultService: vault,
	}
	return NewHandler(services, "test-version", logger.Nop())
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Signup(t *testing.T) {
	router := newTestHandler(nil, nil, nil).Init()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/signup",
		models.SignupRequest{Username: "alice", Salt: "aa", Verifier: "bb"}, nil)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice")
}

func TestHandler_Signup_Conflict(t *testing.T) {
	router := newTestHandler(&stubAuthService{signupErr: store.ErrUsernameAlreadyExists}, nil, nil).Init()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/signup",
		models.SignupRequest{Username: "alice"}, nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_Signup_BadJSON(t *testing.T) {
	router := newTestHandler(nil, nil, nil).Init()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_LoginInit(t *testing.T) {
	router := newTestHandler(nil, nil, nil).Init()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login/init",
		models.LoginInitRequest{Username: "alice"}, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.LoginInitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "attempt-1", resp.AttemptID)
}

func TestHandler_LoginValidate_Unauthorized(t *testing.T) {
	router := newTestHandler(&stubAuthService{validateErr: service.ErrAuthenticationFailed}, nil, nil).Init()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login/validate",
		models.LoginValidateRequest{AttemptID: "x"}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_LoginValidate_TwoFactorRequired(t *testing.T) {
	auth := &stubAuthService{
		validateErr: service.ErrTwoFactorRequired,
		response:    models.LoginValidateResponse{RequiresTwoFactor: true},
	}
	router := newTestHandler(auth, nil, nil).Init()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login/validate",
		models.LoginValidateRequest{AttemptID: "x"}, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp models.LoginValidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.RequiresTwoFactor)
}

func TestHandler_Refresh_Invalid(t *testing.T) {
	router := newTestHandler(nil, &stubTokenService{refreshErr: service.ErrTokenInvalid}, nil).Init()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/refresh",
		models.RefreshRequest{RefreshToken: "stale"}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_VaultPush(t *testing.T) {
	router := newTestHandler(nil, &stubTokenService{userID: 7}, &stubVaultService{pushRevision: 5}).Init()

	rec := doJSON(t, router, http.MethodPost, "/api/vault/push",
		models.VaultPushRequest{Blob: []byte("x"), BasedOnRevision: 4},
		map[string]string{"Authorization": "Bearer token"})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.VaultPushResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(5), resp.Revision)
}

func TestHandler_VaultPush_Conflict(t *testing.T) {
	router := newTestHandler(nil, nil, &stubVaultService{pushErr: store.ErrVaultConflict}).Init()

	rec := doJSON(t, router, http.MethodPost, "/api/vault/push",
		models.VaultPushRequest{Blob: []byte("x"), BasedOnRevision: 1},
		map[string]string{"Authorization": "Bearer token"})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_VaultPull_NoRevisions(t *testing.T) {
	router := newTestHandler(nil, nil, &stubVaultService{pullErr: store.ErrNoRevisions}).Init()

	rec := doJSON(t, router, http.MethodGet, "/api/vault/pull", nil,
		map[string]string{"Authorization": "Bearer token"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_VaultRevisions_MalformedSince(t *testing.T) {
	router := newTestHandler(nil, nil, nil).Init()

	rec := doJSON(t, router, http.MethodGet, "/api/vault/revisions?since=abc", nil,
		map[string]string{"Authorization": "Bearer token"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Version(t *testing.T) {
	router := newTestHandler(nil, nil, nil).Init()

	rec := doJSON(t, router, http.MethodGet, "/api/version", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test-version", rec.Body.String())
}
