// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/passvault-io/passvault/internal/adapter"
	"github.com/passvault-io/passvault/internal/clock"
	"github.com/passvault-io/passvault/internal/config"
	"github.com/passvault-io/passvault/internal/logger"
)

// Options carries the credentials and flags collected by the CLI entrypoint.
type Options struct {
	Username      string
	Password      string
	TwoFactorCode string
	Register      bool
	RememberMe    bool
}

// App wires the adapter, the local state and the sync engine into a runnable
// client.
type App struct {
	cfg    config.ClientConfig
	logger *logger.Logger
}

func NewApp(cfg config.ClientConfig, logger *logger.Logger) *App {
	return &App{cfg: cfg, logger: logger}
}

// Run logs the device in (registering first when requested), performs an
// initial sync and then keeps syncing on the configured interval until ctx
// is cancelled.
func (a *App) Run(ctx context.Context, opts Options) error {
	srv := adapter.NewHTTPServerAdapter(a.cfg.Adapter)

	state, err := NewLocalState(ctx, a.cfg.Storage.DB, a.logger)
	if err != nil {
		return fmt.Errorf("opening local state: %w", err)
	}
	defer state.Close()

	if opts.Register {
		if err = Register(ctx, srv, opts.Username, opts.Password); err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}
		a.logger.Info().Str("username", opts.Username).Msg("account registered")
	}

	key, err := Login(ctx, srv, opts.Username, opts.Password, opts.TwoFactorCode, a.cfg.App.DeviceLabel, opts.RememberMe)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	a.logger.Info().Str("username", opts.Username).Msg("logged in")

	engine := NewEngine(srv, state, key, a.cfg.App.DeviceLabel, clock.System(), a.logger)

	if err = a.syncOnce(ctx, engine, srv); err != nil {
		a.logger.Warn().Err(err).Msg("initial sync failed")
	}

	ticker := time.NewTicker(a.cfg.Workers.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info().Msg("client shutting down")
			return nil
		case <-ticker.C:
			if err = a.syncOnce(ctx, engine, srv); err != nil {
				a.logger.Warn().Err(err).Msg("sync failed")
			}
		}
	}
}

// syncOnce runs one sync cycle, transparently rotating an expired access
// token once before giving up.
func (a *App) syncOnce(ctx context.Context, engine *Engine, srv adapter.ServerAdapter) error {
	revision, err := engine.Sync(ctx)
	if errors.Is(err, adapter.ErrUnauthorized) {
		if _, refreshErr := srv.Refresh(ctx); refreshErr != nil {
			return fmt.Errorf("refreshing tokens: %w", refreshErr)
		}
		revision, err = engine.Sync(ctx)
	}
	if err != nil {
		return err
	}

	a.logger.Debug().Int64("revision", revision).Msg("synced")
	return nil
}
