package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/passvault-io/passvault/internal/clock"
	"github.com/passvault-io/passvault/internal/config"
	"github.com/passvault-io/passvault/internal/logger"
	"github.com/passvault-io/passvault/internal/store"
	"github.com/passvault-io/passvault/internal/utils"
	"github.com/passvault-io/passvault/models"
)

// tokenService is the concrete implementation of TokenService. Access tokens
// are short-lived HMAC-SHA256 JWTs; refresh tokens are opaque one-time rows
// rotated on every use. All expiry arithmetic goes through the injected
// clock, never the wall clock.
type tokenService struct {
	refreshRepository store.RefreshTokenRepository
	auditRepository   store.AuditRepository

	// tokenSignKey is the HMAC secret used to sign and verify access JWTs.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	// Tokens whose issuer does not match this value are rejected.
	tokenIssuer string

	// accessDuration controls how long an access JWT remains valid.
	accessDuration time.Duration

	// refreshDuration is the refresh token lifetime for ordinary sessions;
	// rememberMeDuration applies when the client asked to be remembered.
	refreshDuration    time.Duration
	rememberMeDuration time.Duration

	clock clock.Clock
	uuid  *utils.UUIDGenerator

	logger *logger.Logger
}

// NewTokenService constructs a TokenService populated with security
// parameters from cfg.
func NewTokenService(repos *store.Repositories, cfg config.App, clk clock.Clock, logger *logger.Logger) TokenService {
	return &tokenService{
		refreshRepository:  repos.RefreshTokenRepository,
		auditRepository:    repos.AuditRepository,
		tokenSignKey:       cfg.TokenSignKey,
		tokenIssuer:        cfg.TokenIssuer,
		accessDuration:     cfg.AccessTokenDuration,
		refreshDuration:    cfg.RefreshTokenDuration,
		rememberMeDuration: cfg.RememberMeDuration,
		clock:              clk,
		uuid:               utils.NewUUIDGenerator(),
		logger:             logger,
	}
}

// Issue mints an access/refresh pair for the given user.
//
// The refresh token is persisted before the pair is returned, so a pair the
// client received is always redeemable (once).
func (t *tokenService) Issue(ctx context.Context, userID int64, deviceLabel string, rememberMe bool) (models.TokenPair, error) {
	log := logger.FromContext(ctx)
	now := t.clock.Now()

	access, err := utils.GenerateJWTToken(t.tokenIssuer, userID, t.accessDuration, t.tokenSignKey, now)
	if err != nil {
		log.Err(err).Int64("userID", userID).Msg("access token generation failed")
		return models.TokenPair{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	refreshTTL := t.refreshDuration
	if rememberMe {
		refreshTTL = t.rememberMeDuration
	}

	refresh := models.RefreshToken{
		ID:          t.uuid.Generate(),
		UserID:      userID,
		DeviceLabel: deviceLabel,
		ExpiresAt:   now.Add(refreshTTL),
	}
	if err := t.refreshRepository.Create(ctx, refresh); err != nil {
		log.Err(err).Int64("userID", userID).Msg("refresh token persistence failed")
		return models.TokenPair{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return models.TokenPair{
		AccessToken:     access.SignedString,
		RefreshToken:    refresh.ID,
		AccessExpiresAt: now.Add(t.accessDuration),
	}, nil
}

// Validate checks a compact access token and returns the owner's user ID.
//
// Expiry is evaluated against the service clock. An expired-but-authentic
// token surfaces as ErrTokenExpired so callers (and clients) can tell
// "refresh me" apart from "go away"; every other failure is the opaque
// ErrTokenInvalid.
func (t *tokenService) Validate(ctx context.Context, tokenString string) (int64, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, t.tokenSignKey, t.tokenIssuer, t.clock.Now())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}

	return token.UserID, nil
}

// Refresh rotates a one-time refresh token into a fresh pair.
//
// The consume-and-replace happens in a single repository transaction, so two
// devices racing on the same token leave exactly one winner; the loser gets
// ErrTokenInvalid and must authenticate again.
func (t *tokenService) Refresh(ctx context.Context, req models.RefreshRequest) (models.TokenPair, error) {
	log := logger.FromContext(ctx)

	if req.RefreshToken == "" {
		return models.TokenPair{}, ErrInvalidDataProvided
	}

	now := t.clock.Now()

	replacement := models.RefreshToken{
		ID:          t.uuid.Generate(),
		DeviceLabel: req.DeviceLabel,
		ExpiresAt:   now.Add(t.refreshDuration),
	}

	userID, err := t.refreshRepository.Rotate(ctx, req.RefreshToken, now, replacement)
	if err != nil {
		if errors.Is(err, store.ErrRefreshTokenNotFound) {
			log.Warn().Msg("refresh of unknown, expired or consumed token")
			return models.TokenPair{}, ErrTokenInvalid
		}
		log.Err(err).Msg("refresh token rotation failed")
		return models.TokenPair{}, fmt.Errorf("refresh token rotation failed: %w", err)
	}

	access, err := utils.GenerateJWTToken(t.tokenIssuer, userID, t.accessDuration, t.tokenSignKey, now)
	if err != nil {
		log.Err(err).Int64("userID", userID).Msg("access token generation failed")
		return models.TokenPair{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	event := models.AuditEvent{
		UserID:    userID,
		Action:    models.AuditTokenRefresh,
		Detail:    "token pair rotated",
		CreatedAt: now,
	}
	if err := t.auditRepository.Record(ctx, event); err != nil {
		log.Err(err).Int64("userID", userID).Msg("audit record failed")
	}

	return models.TokenPair{
		AccessToken:     access.SignedString,
		RefreshToken:    replacement.ID,
		AccessExpiresAt: now.Add(t.accessDuration),
	}, nil
}
