package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/passvault-io/passvault/models"
)

// GenerateJWTToken creates a signed HMAC-SHA256 access token.
//
// The token includes the following standard claims:
//   - Issuer    (iss): identifies the service that issued the token
//   - Subject   (sub): the user ID encoded as a string
//   - IssuedAt  (iat): the supplied now instant
//   - ExpiresAt (exp): now plus tokenDuration
//
// now is taken as a parameter rather than read from the wall clock so that
// issuance is driven by the application time source and expiry behavior is
// deterministically testable.
func GenerateJWTToken(issuer string, userID int64, tokenDuration time.Duration, signKey string, now time.Time) (models.AccessToken, error) {
	if issuer == "" || tokenDuration == 0 || signKey == "" {
		return models.AccessToken{}, errors.New("invalid params for generating JWT Token")
	}

	claims := &jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   strconv.FormatInt(userID, 10),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(signKey))
	if err != nil {
		return models.AccessToken{}, fmt.Errorf("error occurred during signing JWT token: %w", err)
	}

	return models.AccessToken{Token: token, SignedString: tokenString, UserID: userID}, nil
}

// ValidateAndParseJWTToken validates the given JWT token string and extracts
// its claims.
//
// Validation includes:
//   - Signature verification using the provided sign key
//   - Issuer (iss) claim check against the provided tokenIssuer
//   - Expiration (exp) claim check against the supplied now instant
//     (via jwt.WithTimeFunc, never the library's wall clock)
//   - Subject (sub) claim presence and conversion to int64 UserID
//
// An expired-but-otherwise-valid token surfaces as an error matching
// [jwt.ErrTokenExpired], letting callers distinguish expiry from forgery.
func ValidateAndParseJWTToken(tokenString, tokenSignKey, tokenIssuer string, now time.Time) (models.AccessToken, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AccessToken{}, func(token *jwt.Token) (any, error) {
		return []byte(tokenSignKey), nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return models.AccessToken{}, fmt.Errorf("error occurred validating and parsing token: %w", err)
	}

	userIDStr, err := token.Claims.GetSubject()
	if err != nil {
		return models.AccessToken{}, fmt.Errorf("error occurred during getting subject from token: %w", err)
	}
	if userIDStr == "" {
		return models.AccessToken{}, errors.New("empty subject error")
	}

	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return models.AccessToken{}, fmt.Errorf("error occurred during converting subject to UserID: %w", err)
	}

	return models.AccessToken{Token: token, UserID: userID}, nil
}
