package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken wraps a JWT access token with convenience accessors for
// authentication flows.
//
// It embeds [jwt.Token] for low-level token operations (signing, parsing)
// and [jwt.RegisteredClaims] for standard claim access (subject, expiry, etc.).
//
// SignedString holds the compact serialized form of the token
// (header.payload.signature) ready to be transmitted in HTTP headers.
//
// UserID is a cached, parsed copy of the "sub" (subject) claim converted to
// int64, populated during parsing to avoid repeated string-to-int work.
type AccessToken struct {
	// Token is the underlying JWT token used for signing and claim inspection.
	// Excluded from JSON serialization because only the compact string form
	// is meaningful outside the server process.
	*jwt.Token `json:"-"`

	// RegisteredClaims provides access to the standard JWT claim set
	// (sub, exp, iat, nbf, iss, aud, jti) as defined by RFC 7519.
	jwt.RegisteredClaims

	// SignedString is the compact JWS representation of the token
	// (base64url-encoded header.payload.signature).
	SignedString string `json:"-"`

	// UserID is the owner identifier extracted from the "sub" claim.
	UserID int64 `json:"-"`
}

// GetUserID extracts the user identifier from the token's "sub" (subject)
// claim, parses it as a base-10 int64, and returns the result.
//
// Returns an error if the subject claim is missing, empty, or cannot be
// converted to int64.
func (t *AccessToken) GetUserID() (int64, error) {
	userIDString, err := t.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("error extracting UserID from token: %w", err)
	}

	userID, err := strconv.ParseInt(userIDString, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error converting UserID from token to int64: %w", err)
	}

	return userID, nil
}

// String returns the compact JWS serialization of the token.
// It implements the [fmt.Stringer] interface.
func (t *AccessToken) String() string {
	return t.SignedString
}

// RefreshToken is the server-side record of a long-lived refresh credential.
// Refresh tokens are strictly one-time: rotation marks the presented row
// consumed in the same transaction that inserts its replacement.
type RefreshToken struct {
	// ID is the opaque token value handed to the client (a UUID).
	ID string `json:"-"`

	// UserID is the owner of the token.
	UserID int64 `json:"-"`

	// DeviceLabel binds the token to the device it was issued for.
	DeviceLabel string `json:"-"`

	// ExpiresAt is the absolute expiry instant of the token.
	ExpiresAt time.Time `json:"-"`

	// ConsumedAt is non-nil once the token has been rotated or revoked.
	ConsumedAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"-"`
}

// TableName returns the name of the database table
// associated with the RefreshToken model.
func (t RefreshToken) TableName() string {
	return "refresh_tokens"
}

// TokenPair is the credential set handed to a client after a completed
// authentication exchange or a successful refresh rotation.
type TokenPair struct {
	// AccessToken is the compact JWS access token string.
	AccessToken string `json:"access_token"`

	// RefreshToken is the opaque one-time refresh token value.
	RefreshToken string `json:"refresh_token"`

	// AccessExpiresAt is the expiry instant of the access token, echoed so
	// clients can schedule refresh without parsing the JWT.
	AccessExpiresAt time.Time `json:"access_expires_at"`
}
