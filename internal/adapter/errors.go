// SPDX-License-Identifier: Apache-2.0

package adapter

import "errors"

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrTwoFactorRequired   = errors.New("two-factor code required")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("revision conflict")
	ErrInternalServerError = errors.New("internal server error")
)
