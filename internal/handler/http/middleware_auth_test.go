package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/passvault-io/passvault/internal/service"
)

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	router := newTestHandler(nil, nil, nil).Init()

	req := httptest.NewRequest(http.MethodGet, "/api/vault/pull", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	router := newTestHandler(nil, nil, nil).Init()

	testCases := []struct {
		name   string
		header string
	}{
		{name: "no scheme", header: "token"},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz"},
		{name: "empty token", header: "Bearer "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/vault/pull", nil)
			req.Header.Set("Authorization", tc.header)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	router := newTestHandler(nil, &stubTokenService{validateErr: service.ErrTokenExpired}, nil).Init()

	req := httptest.NewRequest(http.MethodGet, "/api/vault/pull", nil)
	req.Header.Set("Authorization", "Bearer stale")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "expired")
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := newTestHandler(nil, &stubTokenService{userID: 42}, nil).Init()

	req := httptest.NewRequest(http.MethodGet, "/api/vault/pull", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutes_WrongMethodReturnsNotFound(t *testing.T) {
	router := newTestHandler(nil, nil, nil).Init()

	req := httptest.NewRequest(http.MethodGet, "/api/auth/signup", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
