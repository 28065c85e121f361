package http

import (
	"errors"
	"net/http"

	"github.com/passvault-io/passvault/internal/service"
	"github.com/passvault-io/passvault/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:  http.StatusBadRequest,
	service.ErrAuthenticationFailed: http.StatusUnauthorized,
	service.ErrTwoFactorRequired:    http.StatusUnauthorized,
	service.ErrLoginSessionExpired:  http.StatusUnauthorized,
	service.ErrTokenExpired:         http.StatusUnauthorized,
	service.ErrTokenInvalid:         http.StatusUnauthorized,

	store.ErrUsernameAlreadyExists: http.StatusConflict,
	store.ErrNoUserWasFound:        http.StatusNotFound,
	store.ErrVaultConflict:         http.StatusConflict,
	store.ErrNoRevisions:           http.StatusNotFound,
	store.ErrRefreshTokenNotFound:  http.StatusUnauthorized,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
