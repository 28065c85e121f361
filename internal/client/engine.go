// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/passvault-io/passvault/internal/adapter"
	"github.com/passvault-io/passvault/internal/clock"
	"github.com/passvault-io/passvault/internal/logger"
	"github.com/passvault-io/passvault/internal/syncer"
	"github.com/passvault-io/passvault/models"
)

const defaultMaxPushRetries = 3

// Engine drives the pull, merge, push cycle for one device. Local edits are
// staged into the sqlite state and reconciled with the server on Sync.
type Engine struct {
	server adapter.ServerAdapter
	state  *LocalState

	key         []byte
	deviceLabel string

	maxPushRetries int
	clock          clock.Clock
	logger         *logger.Logger
}

func NewEngine(srv adapter.ServerAdapter, state *LocalState, key []byte, deviceLabel string, clk clock.Clock, logger *logger.Logger) *Engine {
	return &Engine{
		server:         srv,
		state:          state,
		key:            key,
		deviceLabel:    deviceLabel,
		maxPushRetries: defaultMaxPushRetries,
		clock:          clk,
		logger:         logger,
	}
}

// Local returns the device's working vault: staged edits when present,
// otherwise the last synced snapshot, otherwise an empty vault.
func (e *Engine) Local(ctx context.Context) (syncer.Vault, error) {
	state, err := e.state.Load(ctx)
	if errors.Is(err, ErrLocalStateNotFound) {
		return syncer.Vault{}, nil
	}
	if err != nil {
		return syncer.Vault{}, err
	}

	blob := state.PendingBlob
	if len(blob) == 0 {
		blob = state.Blob
	}
	if len(blob) == 0 {
		return syncer.Vault{}, nil
	}
	return syncer.DecodeVault(blob, e.key)
}

// Stage records local edits to be pushed on the next Sync. The vault is
// sealed immediately so plaintext never reaches disk.
func (e *Engine) Stage(ctx context.Context, v syncer.Vault) error {
	blob, err := syncer.EncodeVault(v, e.key)
	if err != nil {
		return err
	}

	state, err := e.state.Load(ctx)
	if err != nil && !errors.Is(err, ErrLocalStateNotFound) {
		return err
	}
	state.PendingBlob = blob
	return e.state.Save(ctx, state)
}

// Sync reconciles the device with the server and returns the revision the
// device holds afterwards.
//
// Without staged edits it fast-forwards to the server's current revision.
// With staged edits it pulls, merges and pushes based on the server's
// revision; a push rejected as stale re-pulls and retries with the newer
// base, bounded by maxPushRetries before surfacing ErrSyncConflict.
func (e *Engine) Sync(ctx context.Context) (int64, error) {
	state, err := e.state.Load(ctx)
	if err != nil && !errors.Is(err, ErrLocalStateNotFound) {
		return 0, err
	}

	if len(state.PendingBlob) == 0 {
		return e.fastForward(ctx, state)
	}

	local, err := syncer.DecodeVault(state.PendingBlob, e.key)
	if err != nil {
		return 0, fmt.Errorf("decoding staged vault: %w", err)
	}

	for attempt := 0; attempt < e.maxPushRetries; attempt++ {
		remoteRevision, remoteVault, err := e.pullCurrent(ctx)
		if err != nil {
			return 0, err
		}

		merged := syncer.Merge(local, remoteVault)
		blob, err := syncer.EncodeVault(merged, e.key)
		if err != nil {
			return 0, err
		}

		newRevision, err := e.server.PushVault(ctx, models.VaultPushRequest{
			Blob:             blob,
			BasedOnRevision:  remoteRevision,
			CredentialsCount: int64(merged.CredentialsCount()),
			EmailAddresses:   merged.EmailAddresses,
			PublicDomains:    merged.PublicDomains,
			PrivateDomains:   merged.PrivateDomains,
			ClientLabel:      e.deviceLabel,
		})
		if errors.Is(err, adapter.ErrConflict) {
			e.logger.Debug().Int64("base", remoteRevision).Msg("push rejected as stale, re-pulling")
			local = merged
			continue
		}
		if err != nil {
			return 0, err
		}

		err = e.state.Save(ctx, SyncState{
			LastRevision: newRevision,
			Blob:         blob,
			SyncedAt:     e.clock.Now(),
		})
		if err != nil {
			return 0, err
		}
		return newRevision, nil
	}

	return 0, ErrSyncConflict
}

func (e *Engine) fastForward(ctx context.Context, state SyncState) (int64, error) {
	remote, err := e.server.PullVault(ctx)
	if errors.Is(err, adapter.ErrNotFound) {
		return state.LastRevision, nil
	}
	if err != nil {
		return 0, err
	}
	if remote.Revision == state.LastRevision {
		return state.LastRevision, nil
	}

	err = e.state.Save(ctx, SyncState{
		LastRevision: remote.Revision,
		Blob:         remote.Blob,
		SyncedAt:     e.clock.Now(),
	})
	if err != nil {
		return 0, err
	}
	return remote.Revision, nil
}

func (e *Engine) pullCurrent(ctx context.Context) (int64, syncer.Vault, error) {
	remote, err := e.server.PullVault(ctx)
	if errors.Is(err, adapter.ErrNotFound) {
		return 0, syncer.Vault{}, nil
	}
	if err != nil {
		return 0, syncer.Vault{}, err
	}

	vault, err := syncer.DecodeVault(remote.Blob, e.key)
	if err != nil {
		return 0, syncer.Vault{}, fmt.Errorf("decoding server revision %d: %w", remote.Revision, err)
	}
	return remote.Revision, vault, nil
}
