package service

import (
	"github.com/passvault-io/passvault/internal/clock"
	"github.com/passvault-io/passvault/internal/config"
	"github.com/passvault-io/passvault/internal/logger"
	"github.com/passvault-io/passvault/internal/retention"
	"github.com/passvault-io/passvault/internal/store"
)

type Services struct {
	AuthService      AuthService
	TokenService     TokenService
	VaultService     VaultService
	RetentionService RetentionService
}

func NewServices(repos *store.Repositories, sessions *store.LoginSessionStore, policy retention.Policy, cfg config.App, clk clock.Clock, logger *logger.Logger) *Services {
	tokens := NewTokenService(repos, cfg, clk, logger)

	return &Services{
		AuthService:      NewAuthService(repos, sessions, tokens, clk, logger),
		TokenService:     tokens,
		VaultService:     NewVaultService(repos, clk, logger),
		RetentionService: NewRetentionService(repos, policy, clk, logger),
	}
}
