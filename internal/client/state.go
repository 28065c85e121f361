// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/passvault-io/passvault/internal/config"
	"github.com/passvault-io/passvault/internal/logger"
)

// SyncState is the device's record of its last successful exchange with the
// server. Blob is the encrypted vault as of LastRevision; PendingBlob, when
// set, holds encrypted local edits that have not been pushed yet.
type SyncState struct {
	LastRevision int64
	Blob         []byte
	PendingBlob  []byte
	SyncedAt     time.Time
}

// LocalState persists SyncState in a single-row sqlite table so the device
// can merge and push offline edits on the next run.
type LocalState struct {
	db     *sql.DB
	logger *logger.Logger
}

const createSyncStateTable = `
	CREATE TABLE IF NOT EXISTS sync_state (
		id            INTEGER PRIMARY KEY CHECK (id = 1),
		last_revision INTEGER NOT NULL,
		blob          BLOB,
		pending_blob  BLOB,
		synced_at     TIMESTAMP NOT NULL
	)`

func NewLocalState(ctx context.Context, cfg config.ClientDB, log *logger.Logger) (*LocalState, error) {
	if err := createLocalDBFileIfNotExists(cfg.DSN); err != nil {
		log.Err(err).Str("func", "NewLocalState").Msg("error creating database file")
		return nil, err
	}

	conn, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		log.Err(err).Str("func", "NewLocalState").Msg("error connecting database")
		return nil, fmt.Errorf("error opening connection to DB: %w", err)
	}

	// single-row store; one connection also keeps :memory: databases stable
	conn.SetMaxOpenConns(1)

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewLocalState").Msg("error connecting database (ping)")
		return nil, err
	}

	if _, err = conn.ExecContext(ctx, createSyncStateTable); err != nil {
		log.Err(err).Str("func", "NewLocalState").Msg("error creating sync_state table")
		return nil, err
	}

	return &LocalState{db: conn, logger: log}, nil
}

// Load returns the stored state, or ErrLocalStateNotFound on a fresh device.
func (l *LocalState) Load(ctx context.Context) (SyncState, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT last_revision, blob, pending_blob, synced_at FROM sync_state WHERE id = 1`)

	var state SyncState
	err := row.Scan(&state.LastRevision, &state.Blob, &state.PendingBlob, &state.SyncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SyncState{}, ErrLocalStateNotFound
	}
	if err != nil {
		return SyncState{}, fmt.Errorf("loading sync state: %w", err)
	}
	return state, nil
}

// Save upserts the single state row.
func (l *LocalState) Save(ctx context.Context, state SyncState) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO sync_state (id, last_revision, blob, pending_blob, synced_at)
		 VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
			last_revision = excluded.last_revision,
			blob          = excluded.blob,
			pending_blob  = excluded.pending_blob,
			synced_at     = excluded.synced_at`,
		state.LastRevision, state.Blob, state.PendingBlob, state.SyncedAt)
	if err != nil {
		return fmt.Errorf("saving sync state: %w", err)
	}
	return nil
}

func (l *LocalState) Close() error {
	return l.db.Close()
}

func createLocalDBFileIfNotExists(dbFile string) error {
	// sqlite creates in-memory databases itself
	if dbFile == ":memory:" || strings.Contains(dbFile, "mode=memory") {
		return nil
	}

	if _, err := os.Stat(dbFile); os.IsNotExist(err) {
		f, err := os.Create(dbFile)
		if err != nil {
			return fmt.Errorf("error creating DB file: %w", err)
		}
		f.Close()
	}

	return nil
}
